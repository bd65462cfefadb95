package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hbjs97/qaenv/internal/config"
	"github.com/hbjs97/qaenv/internal/shell"
	"github.com/spf13/cobra"
)

// setupTemplate는 qaenv setup이 생성하는 기본 config.toml 내용이다.
const setupTemplate = `# qaenv configuration file

version = 1

# QAWORKDIR이 비어 있을 때 현재 디렉토리 아래에 만들 디렉토리 이름
dir_name = "qaworkdir"

# matplotlibrc에 기록할 backend (비대화형)
backend = "agg"

# activate/deactivate 기본 셸 (sh, bash, zsh, fish, dotenv)
shell = "bash"
`

func (a *App) newSetupCmd() *cobra.Command {
	var force bool
	var installHook bool
	var shellType string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "qaenv 설정 파일을 생성한다",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.runSetup(cmd.OutOrStdout(), force, shellType); err != nil {
				return err
			}
			if installHook {
				return a.runInstallHook(cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "기존 설정 파일을 덮어쓴다")
	cmd.Flags().StringVar(&shellType, "shell", "", "주석 템플릿 대신 이 셸을 기본값으로 한 설정을 저장한다")
	cmd.Flags().BoolVar(&installHook, "install-hook", false, "셸 RC 파일에 activate 스니펫을 추가한다")
	return cmd
}

// runSetup는 설정 파일 템플릿을 생성한다.
// shellType이 주어지면 템플릿 대신 기본 설정에 shell만 바꿔 저장한다.
func (a *App) runSetup(w io.Writer, force bool, shellType string) error {
	if _, err := os.Stat(a.CfgPath); err == nil && !force {
		return fmt.Errorf("cli.setup: 설정 파일이 이미 존재합니다: %s (--force로 덮어쓰기)", a.CfgPath)
	}

	if shellType != "" {
		if !shell.Supported(shellType) {
			return fmt.Errorf("cli.setup: %w: %s", shell.ErrUnsupportedShell, shellType)
		}
		cfg := config.Default()
		cfg.Shell = shellType
		if err := cfg.Save(a.CfgPath); err != nil {
			return err
		}
		fmt.Fprintf(w, "설정 파일이 생성되었습니다: %s (shell = %s)\n", a.CfgPath, shellType)
		return nil
	}

	dir := filepath.Dir(a.CfgPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("cli.setup: 디렉토리 생성 실패: %w", err)
	}

	if err := os.WriteFile(a.CfgPath, []byte(setupTemplate), 0600); err != nil {
		return fmt.Errorf("cli.setup: 설정 파일 생성 실패: %w", err)
	}

	fmt.Fprintf(w, "설정 파일이 생성되었습니다: %s\n", a.CfgPath)
	fmt.Fprintln(w, `셸에서 eval "$(qaenv activate)" 로 활성화하세요.`)
	return nil
}

func (a *App) runInstallHook(w io.Writer) error {
	shellType := shell.Detect(a.Getenv)
	rcPath := shell.RCPath(a.HomeDir, shellType)
	if rcPath == "" {
		return fmt.Errorf("cli.setup: %w: %q", shell.ErrUnsupportedShell, shellType)
	}
	if err := shell.InstallHook(shellType, rcPath); err != nil {
		return err
	}
	fmt.Fprintf(w, "셸 hook 설치: %s\n", rcPath)
	return nil
}
