package workenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// 환경변수 이름. activate 출력과 exec 자식 프로세스 환경에 그대로 사용된다.
const (
	EnvWorkDir      = "QAWORKDIR"
	EnvCacheDir     = "QACACHEDIR"
	EnvMPLConfigDir = "MPLCONFIGDIR"
	EnvGreen        = "GREEN"
	EnvRed          = "RED"
	EnvReset        = "RESET"
)

const (
	// DefaultDirName은 QAWORKDIR 미설정 시 cwd 아래에 만드는 디렉토리 이름이다.
	DefaultDirName = "qaworkdir"
	// CacheDirName은 작업 디렉토리 아래 캐시 디렉토리 이름이다.
	CacheDirName = "cached"
	// RCFileName은 matplotlib 설정 파일 이름이다.
	RCFileName = "matplotlibrc"
	// DefaultBackend는 비대화형 렌더링 backend다.
	DefaultBackend = "agg"
)

// Options는 Resolve/Init의 기본값을 조정한다. 빈 필드는 기본값을 쓴다.
type Options struct {
	DirName string
	Backend string
}

func (o Options) dirName() string {
	if o.DirName == "" {
		return DefaultDirName
	}
	return o.DirName
}

func (o Options) backend() string {
	if o.Backend == "" {
		return DefaultBackend
	}
	return o.Backend
}

// Env는 초기화된 QA 세션 설정이다.
// 셸 스크립트의 전역 환경변수 대신 명시적으로 전달되며,
// 프로세스 경계(activate 출력, exec)에서만 환경변수로 export된다.
type Env struct {
	WorkDir      string `json:"workdir"`
	CacheDir     string `json:"cachedir"`
	MPLConfigDir string `json:"mplconfigdir"`
	Colors       Colors `json:"-"`
}

// Var는 export 대상 환경변수 하나다.
type Var struct {
	Name  string
	Value string
}

// Resolve는 파일시스템을 건드리지 않고 Env를 계산한다.
// QAWORKDIR이 빈 문자열이면 미설정과 동일하게 취급한다.
func Resolve(getenv func(string) string, cwd string, opts Options) Env {
	workDir := getenv(EnvWorkDir)
	if workDir == "" {
		workDir = filepath.Join(cwd, opts.dirName())
	}
	return Env{
		WorkDir:      workDir,
		CacheDir:     workDir + string(filepath.Separator) + CacheDirName,
		MPLConfigDir: workDir,
		Colors:       DefaultColors(),
	}
}

// Init은 Resolve 후 작업 디렉토리, 캐시 디렉토리, matplotlibrc를 만든다.
// 각 단계는 best-effort로 앞 단계 실패와 무관하게 모두 시도된다.
// 실패는 errors.Join으로 모아 반환하며 Env는 항상 완전히 채워져 있다.
func Init(getenv func(string) string, cwd string, opts Options) (Env, error) {
	env := Resolve(getenv, cwd, opts)

	var errs []error
	if err := os.MkdirAll(env.WorkDir, 0755); err != nil {
		errs = append(errs, fmt.Errorf("workenv.Init: 작업 디렉토리 생성 실패: %w", err))
	}
	if err := mkdirCache(env.CacheDir); err != nil {
		errs = append(errs, fmt.Errorf("workenv.Init: 캐시 디렉토리 생성 실패: %w", err))
	}
	if err := WriteRC(env.MPLConfigDir, opts.backend()); err != nil {
		errs = append(errs, fmt.Errorf("workenv.Init: %w", err))
	}
	return env, errors.Join(errs...)
}

// mkdirCache는 한 단계만 생성한다 (부모 생성 없음).
// 이미 디렉토리로 존재하는 경우는 에러가 아니다.
func mkdirCache(path string) error {
	err := os.Mkdir(path, 0755)
	if err == nil || !errors.Is(err, fs.ErrExist) {
		return err
	}
	info, statErr := os.Stat(path)
	if statErr == nil && info.IsDir() {
		return nil
	}
	return err
}

// RCContent는 matplotlibrc의 전체 내용이다.
func RCContent(backend string) string {
	return "backend: " + backend + "\n"
}

// WriteRC는 dir/matplotlibrc를 create-or-truncate로 기록한다.
func WriteRC(dir, backend string) error {
	path := filepath.Join(dir, RCFileName)
	if err := os.WriteFile(path, []byte(RCContent(backend)), 0644); err != nil {
		return fmt.Errorf("matplotlibrc 기록 실패: %w", err)
	}
	return nil
}

// RCPath는 matplotlibrc 경로를 반환한다.
func (e Env) RCPath() string {
	return filepath.Join(e.MPLConfigDir, RCFileName)
}

// Vars는 export 순서대로 환경변수 목록을 반환한다.
func (e Env) Vars() []Var {
	return []Var{
		{EnvWorkDir, e.WorkDir},
		{EnvCacheDir, e.CacheDir},
		{EnvMPLConfigDir, e.MPLConfigDir},
		{EnvGreen, e.Colors.Green},
		{EnvRed, e.Colors.Red},
		{EnvReset, e.Colors.Reset},
	}
}

// Names는 export되는 환경변수 이름 목록이다.
func Names() []string {
	vars := Env{}.Vars()
	names := make([]string, 0, len(vars))
	for _, v := range vars {
		names = append(names, v.Name)
	}
	return names
}

// Map은 Vars를 map으로 변환한다. cmdexec.Commander.Attach 인자로 쓴다.
func (e Env) Map() map[string]string {
	vars := e.Vars()
	m := make(map[string]string, len(vars))
	for _, v := range vars {
		m[v.Name] = v.Value
	}
	return m
}

// Environ은 "KEY=VALUE" 형식 목록을 반환한다.
func (e Env) Environ() []string {
	vars := e.Vars()
	out := make([]string, 0, len(vars))
	for _, v := range vars {
		out = append(out, v.Name+"="+v.Value)
	}
	return out
}

// Apply는 setenv(보통 os.Setenv)로 모든 변수를 export한다.
func (e Env) Apply(setenv func(key, value string) error) error {
	for _, v := range e.Vars() {
		if err := setenv(v.Name, v.Value); err != nil {
			return fmt.Errorf("workenv.Apply: %s: %w", v.Name, err)
		}
	}
	return nil
}
