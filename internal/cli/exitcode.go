package cli

import (
	"errors"
	"os/exec"
)

// ExitCode는 qaenv의 종료 코드다.
type ExitCode int

const (
	// ExitSuccess는 정상 종료다.
	ExitSuccess ExitCode = 0
	// ExitGeneral는 일반 에러다.
	ExitGeneral ExitCode = 1
	// ExitConfigError는 설정 파일 오류다.
	ExitConfigError ExitCode = 5
	// ExitUnsupportedShell는 지원하지 않는 셸 유형이다.
	ExitUnsupportedShell ExitCode = 6
)

// MapExitCode는 sentinel error를 기반으로 적절한 종료 코드를 반환한다.
// exec로 실행한 자식 프로세스가 실패하면 그 종료 코드를 그대로 전달한다.
func MapExitCode(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.Is(err, ErrUnsupportedShell):
		return ExitUnsupportedShell
	case errors.As(err, &exitErr) && exitErr.ExitCode() > 0:
		return ExitCode(exitErr.ExitCode())
	default:
		return ExitGeneral
	}
}
