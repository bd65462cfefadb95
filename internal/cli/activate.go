package cli

import (
	"fmt"
	"io"

	"github.com/hbjs97/qaenv/internal/config"
	"github.com/hbjs97/qaenv/internal/shell"
	"github.com/hbjs97/qaenv/internal/workenv"
	"github.com/spf13/cobra"
)

func (a *App) newActivateCmd() *cobra.Command {
	var shellType string
	var hookOnly bool

	cmd := &cobra.Command{
		Use:   "activate",
		Short: "작업 디렉토리를 준비하고 export 명령을 출력한다",
		Long: `작업 디렉토리를 준비하고 셸에서 eval할 export 명령을 출력한다.

  eval "$(qaenv activate)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			shellType, err = resolveShell(shellType, cfg)
			if err != nil {
				return err
			}
			if hookOnly {
				snippet := shell.SourceSnippet(shellType)
				if snippet == "" {
					return fmt.Errorf("cli.activate: %w: %s", shell.ErrUnsupportedShell, shellType)
				}
				fmt.Fprint(cmd.OutOrStdout(), snippet)
				return nil
			}
			return a.runActivate(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, shellType)
		},
	}
	cmd.Flags().StringVar(&shellType, "shell", "", "셸 유형 (sh, bash, zsh, fish, dotenv). 기본값은 설정 파일의 shell")
	cmd.Flags().BoolVar(&hookOnly, "hook", false, "RC 파일용 스니펫만 출력")
	return cmd
}

// runActivate는 초기화 단계 실패를 경고로만 출력하고 export는 항상 출력한다.
func (a *App) runActivate(stdout, stderr io.Writer, cfg *config.Config, shellType string) error {
	env, err := a.initEnv(stderr, cfg)
	if err != nil {
		return err
	}

	out, err := shell.Export(env.Vars(), shellType)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, out)
	return nil
}

// initEnv는 workenv.Init을 실행하고 단계별 실패를 stderr에 경고로 출력한다.
// 반환 에러는 cwd 조회 실패뿐이다.
func (a *App) initEnv(stderr io.Writer, cfg *config.Config) (workenv.Env, error) {
	cwd, err := a.Getwd()
	if err != nil {
		return workenv.Env{}, fmt.Errorf("cli.activate: %w", err)
	}

	env, initErr := workenv.Init(a.Getenv, cwd, cfg.Options())
	if initErr != nil {
		for _, e := range unwrapJoined(initErr) {
			fmt.Fprintf(stderr, "경고: %v\n", e)
		}
	}
	a.debugf(stderr, "QAWORKDIR=%s\nQACACHEDIR=%s\nMPLCONFIGDIR=%s\n", env.WorkDir, env.CacheDir, env.MPLConfigDir)
	return env, nil
}

func (a *App) newDeactivateCmd() *cobra.Command {
	var shellType string

	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "activate가 export한 환경변수를 해제하는 명령을 출력한다",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			shellType, err = resolveShell(shellType, cfg)
			if err != nil {
				return err
			}
			out, err := shell.Unset(workenv.Names(), shellType)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&shellType, "shell", "", "셸 유형 (sh, bash, zsh, fish)")
	return cmd
}

func resolveShell(flagValue string, cfg *config.Config) (string, error) {
	shellType := flagValue
	if shellType == "" {
		shellType = cfg.Shell
	}
	if !shell.Supported(shellType) {
		return "", fmt.Errorf("cli: %w: %s", shell.ErrUnsupportedShell, shellType)
	}
	return shellType, nil
}

func unwrapJoined(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
