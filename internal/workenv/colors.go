package workenv

// Colors는 하위 스크립트의 컬러 출력용 ANSI escape sequence다.
type Colors struct {
	Green string
	Red   string
	Reset string
}

// DefaultColors는 고정된 green/red/reset 코드를 반환한다.
func DefaultColors() Colors {
	return Colors{
		Green: "\033[0;32m",
		Red:   "\033[0;31m",
		Reset: "\033[0m",
	}
}

// Wrap은 s를 color로 감싸고 reset을 붙인다.
func (c Colors) Wrap(color, s string) string {
	return color + s + c.Reset
}
