package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hbjs97/qaenv/internal/cmdexec"
	"github.com/hbjs97/qaenv/internal/config"
	"github.com/spf13/cobra"
)

// App은 CLI 명령이 공유하는 의존성이다. 테스트에서는 각 필드를 교체한다.
type App struct {
	Commander cmdexec.Commander
	CfgPath   string
	Verbose   bool
	Getenv    func(string) string
	Getwd     func() (string, error)
	HomeDir   string
}

// NewApp은 실제 프로세스 환경을 사용하는 App을 생성한다.
func NewApp() *App {
	home := homeDir()
	return &App{
		Commander: &cmdexec.RealCommander{},
		CfgPath:   filepath.Join(home, ".config", "qaenv", "config.toml"),
		Getenv:    os.Getenv,
		Getwd:     os.Getwd,
		HomeDir:   home,
	}
}

// NewRootCmd는 qaenv CLI의 루트 명령을 생성한다.
func (a *App) NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "qaenv",
		Short:        "QA 작업 디렉토리와 환경변수를 초기화한다",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&a.CfgPath, "config", a.CfgPath, "설정 파일 경로")
	cmd.PersistentFlags().BoolVar(&a.Verbose, "verbose", false, "상세 출력")

	cmd.AddCommand(
		a.newActivateCmd(),
		a.newDeactivateCmd(),
		a.newExecCmd(),
		a.newStatusCmd(),
		a.newDoctorCmd(),
		a.newCleanCmd(),
		a.newSetupCmd(),
	)
	return cmd
}

func (a *App) loadConfig() (*config.Config, error) {
	return config.Load(a.CfgPath)
}

func (a *App) debugf(w io.Writer, format string, args ...any) {
	if a.Verbose {
		fmt.Fprintf(w, format, args...)
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "경고: 홈 디렉토리 확인 실패: %v\n", err)
		return "."
	}
	return home
}
