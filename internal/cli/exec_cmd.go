package cli

import (
	"fmt"

	"github.com/hbjs97/qaenv/internal/cmdexec"
	"github.com/spf13/cobra"
)

func (a *App) newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec -- COMMAND [ARGS...]",
		Short: "작업 디렉토리를 준비한 뒤 환경변수를 적용해 명령을 실행한다",
		Example: `  qaenv exec -- python3 tools/qa/trapdoor_pep8.py feature
  qaenv exec -- make check`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			env, err := a.initEnv(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}

			a.debugf(cmd.ErrOrStderr(), "실행: %v\n", args)
			stdio := cmdexec.Stdio{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
			if err := a.Commander.Attach(cmd.Context(), env.Map(), stdio, args[0], args[1:]...); err != nil {
				// 자식의 stderr가 이미 출력됐으므로 cobra의 "Error:" 줄은 생략하고 종료 코드만 전달한다.
				cmd.SilenceErrors = true
				return fmt.Errorf("cli.exec: %s: %w", args[0], err)
			}
			return nil
		},
	}
}
