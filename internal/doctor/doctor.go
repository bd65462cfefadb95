package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hbjs97/qaenv/internal/cmdexec"
	"github.com/hbjs97/qaenv/internal/workenv"
)

// Status는 진단 결과 상태다.
type Status string

const (
	// StatusOK는 정상 상태다.
	StatusOK Status = "OK"
	// StatusWarn는 경고 상태다.
	StatusWarn Status = "WARN"
	// StatusFail는 실패 상태다.
	StatusFail Status = "FAIL"
)

// DiagResult는 하나의 진단 결과다.
type DiagResult struct {
	Name    string
	Status  Status
	Message string
	Fix     string
}

// CheckBinaries는 QA 스크립트가 사용하는 바이너리(git, python3) 존재 여부를 확인한다.
func CheckBinaries(ctx context.Context, cmd cmdexec.Commander) []DiagResult {
	binaries := []struct {
		name    string
		args    []string
		install string
	}{
		{"git", []string{"--version"}, "https://git-scm.com/downloads"},
		{"python3", []string{"--version"}, "https://www.python.org/downloads/"},
	}

	var results []DiagResult
	for _, b := range binaries {
		out, err := cmd.Run(ctx, b.name, b.args...)
		if err != nil {
			results = append(results, DiagResult{
				Name:    b.name,
				Status:  StatusFail,
				Message: fmt.Sprintf("%s 없음", b.name),
				Fix:     fmt.Sprintf("설치: %s", b.install),
			})
		} else {
			results = append(results, DiagResult{
				Name:    b.name,
				Status:  StatusOK,
				Message: strings.TrimSpace(string(out)),
			})
		}
	}
	return results
}

// CheckWorkDir는 작업 디렉토리가 디렉토리로 존재하는지 확인한다.
func CheckWorkDir(env workenv.Env) DiagResult {
	return checkDir("workdir", env.WorkDir)
}

// CheckCacheDir는 캐시 디렉토리가 디렉토리로 존재하는지 확인한다.
func CheckCacheDir(env workenv.Env) DiagResult {
	return checkDir("cachedir", env.CacheDir)
}

func checkDir(name, path string) DiagResult {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return DiagResult{
			Name:    name,
			Status:  StatusFail,
			Message: fmt.Sprintf("%s 없음", path),
			Fix:     "qaenv activate 실행",
		}
	case err != nil:
		return DiagResult{
			Name:    name,
			Status:  StatusFail,
			Message: fmt.Sprintf("%s 확인 실패: %v", path, err),
		}
	case !info.IsDir():
		return DiagResult{
			Name:    name,
			Status:  StatusFail,
			Message: fmt.Sprintf("%s 는 디렉토리가 아님", path),
			Fix:     fmt.Sprintf("rm %s 후 qaenv activate 실행", path),
		}
	}
	return DiagResult{Name: name, Status: StatusOK, Message: path}
}

// CheckRCFile는 matplotlibrc 내용이 backend 설정과 정확히 일치하는지 확인한다.
func CheckRCFile(env workenv.Env, backend string) DiagResult {
	path := env.RCPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return DiagResult{
			Name:    "matplotlibrc",
			Status:  StatusFail,
			Message: fmt.Sprintf("%s 읽기 실패", path),
			Fix:     "qaenv activate 실행",
		}
	}
	want := workenv.RCContent(backend)
	if string(data) != want {
		return DiagResult{
			Name:    "matplotlibrc",
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s 내용이 %q 와 다름", path, strings.TrimSpace(want)),
			Fix:     "qaenv activate 실행 (파일을 덮어씀)",
		}
	}
	return DiagResult{Name: "matplotlibrc", Status: StatusOK, Message: strings.TrimSpace(want)}
}

// CheckExported는 현재 셸에 activate 결과가 export되어 있는지 확인한다.
func CheckExported(env workenv.Env, getenv func(string) string) DiagResult {
	var missing, differ []string
	for _, v := range env.Vars() {
		got := getenv(v.Name)
		switch {
		case got == "":
			missing = append(missing, v.Name)
		case got != v.Value:
			differ = append(differ, v.Name)
		}
	}
	if len(missing) == 0 && len(differ) == 0 {
		return DiagResult{Name: "exported", Status: StatusOK, Message: "셸 환경변수 일치"}
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "미설정: "+strings.Join(missing, ", "))
	}
	if len(differ) > 0 {
		parts = append(parts, "불일치: "+strings.Join(differ, ", "))
	}
	return DiagResult{
		Name:    "exported",
		Status:  StatusWarn,
		Message: strings.Join(parts, "; "),
		Fix:     `eval "$(qaenv activate)"`,
	}
}

// RunAll은 모든 진단을 실행한다.
func RunAll(ctx context.Context, cmd cmdexec.Commander, env workenv.Env, backend string, getenv func(string) string) []DiagResult {
	var results []DiagResult
	results = append(results, CheckBinaries(ctx, cmd)...)
	results = append(results, CheckWorkDir(env))
	results = append(results, CheckCacheDir(env))
	results = append(results, CheckRCFile(env, backend))
	results = append(results, CheckExported(env, getenv))
	return results
}
