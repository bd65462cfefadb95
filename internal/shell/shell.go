package shell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/hbjs97/qaenv/internal/workenv"
	"github.com/joho/godotenv"
)

// ErrUnsupportedShell는 지원하지 않는 셸 유형이 지정됐을 때의 sentinel error다.
var ErrUnsupportedShell = errors.New("지원하지 않는 셸")

// Supported는 유효한 셸 유형인지 확인한다.
func Supported(shellType string) bool {
	switch shellType {
	case "sh", "bash", "zsh", "fish", "dotenv":
		return true
	default:
		return false
	}
}

// Export는 환경변수를 셸에서 eval할 수 있는 export 명령으로 렌더링한다.
func Export(vars []workenv.Var, shellType string) (string, error) {
	var b strings.Builder
	switch shellType {
	case "fish":
		for _, v := range vars {
			fmt.Fprintf(&b, "set -gx %s %s\n", v.Name, fishQuote(v.Value))
		}
	case "dotenv":
		m := make(map[string]string, len(vars))
		for _, v := range vars {
			m[v.Name] = v.Value
		}
		out, err := godotenv.Marshal(m)
		if err != nil {
			return "", fmt.Errorf("shell.Export: %w", err)
		}
		b.WriteString(out)
		b.WriteString("\n")
	case "sh", "bash", "zsh":
		for _, v := range vars {
			fmt.Fprintf(&b, "export %s=%s\n", v.Name, shellescape.Quote(v.Value))
		}
	default:
		return "", fmt.Errorf("shell.Export: %w: %s", ErrUnsupportedShell, shellType)
	}
	return b.String(), nil
}

// Unset는 환경변수 해제 명령을 생성한다.
func Unset(names []string, shellType string) (string, error) {
	var b strings.Builder
	switch shellType {
	case "fish":
		for _, n := range names {
			fmt.Fprintf(&b, "set -e %s\n", n)
		}
	case "sh", "bash", "zsh":
		for _, n := range names {
			fmt.Fprintf(&b, "unset %s\n", n)
		}
	default:
		return "", fmt.Errorf("shell.Unset: %w: %s", ErrUnsupportedShell, shellType)
	}
	return b.String(), nil
}

// SourceSnippet는 RC 파일에 넣을 활성화 스니펫을 반환한다.
func SourceSnippet(shellType string) string {
	switch shellType {
	case "sh", "bash", "zsh":
		return fmt.Sprintf(`# qaenv shell integration (%s)
eval "$(qaenv activate --shell %s)"
`, shellType, shellType)
	case "fish":
		return `# qaenv shell integration (fish)
qaenv activate --shell fish | source
`
	default:
		return ""
	}
}

// fish는 작은따옴표 안에서도 \\ 와 \' 를 escape로 해석하므로 별도로 처리한다.
var fishEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func fishQuote(s string) string {
	return "'" + fishEscaper.Replace(s) + "'"
}

// Detect는 $SHELL에서 셸 유형을 감지한다.
func Detect(getenv func(string) string) string {
	sh := getenv("SHELL")
	if sh == "" {
		return ""
	}
	return filepath.Base(sh)
}

// RCPath는 셸별 RC 파일 경로를 반환한다.
func RCPath(home, shellType string) string {
	switch shellType {
	case "zsh":
		return filepath.Join(home, ".zshrc")
	case "bash":
		return filepath.Join(home, ".bashrc")
	case "sh":
		return filepath.Join(home, ".profile")
	case "fish":
		return filepath.Join(home, ".config", "fish", "conf.d", "qaenv.fish")
	default:
		return ""
	}
}

// InstallHook은 RC 파일에 SourceSnippet을 추가한다.
// 이미 설치되어 있으면 건너뛴다.
func InstallHook(shellType, rcPath string) error {
	snippet := SourceSnippet(shellType)
	if snippet == "" {
		return fmt.Errorf("shell.InstallHook: %w: %s", ErrUnsupportedShell, shellType)
	}

	existing, _ := os.ReadFile(rcPath) // 파일이 없으면 빈 바이트
	if strings.Contains(string(existing), "qaenv shell integration") {
		return nil // 이미 설치됨
	}

	if err := os.MkdirAll(filepath.Dir(rcPath), 0700); err != nil {
		return fmt.Errorf("shell.InstallHook: %w", err)
	}
	f, err := os.OpenFile(rcPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("shell.InstallHook: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "\n%s", snippet); err != nil {
		return fmt.Errorf("shell.InstallHook: %w", err)
	}
	return nil
}
