package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/hbjs97/qaenv/internal/config"
	"github.com/hbjs97/qaenv/internal/doctor"
	"github.com/hbjs97/qaenv/internal/workenv"
	"github.com/spf13/cobra"
)

func (a *App) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "QA 환경 설정을 진단한다",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDoctor(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (a *App) runDoctor(ctx context.Context, w io.Writer) error {
	cfg, err := a.loadConfig()
	if err != nil {
		fmt.Fprintf(w, "[FAIL] config: %v\n", err)
		fmt.Fprintln(w, "      Fix: qaenv setup --force 실행 또는 설정 파일 확인")
		cfg = config.Default()
	}

	cwd, err := a.Getwd()
	if err != nil {
		// cwd 없이는 경로 진단 불가, 바이너리만 확인
		printDiagResults(w, doctor.CheckBinaries(ctx, a.Commander))
		return nil
	}

	env := workenv.Resolve(a.Getenv, cwd, cfg.Options())
	printDiagResults(w, doctor.RunAll(ctx, a.Commander, env, cfg.Backend, a.Getenv))
	return nil
}

// printDiagResults는 진단 결과 목록을 출력한다.
func printDiagResults(w io.Writer, results []doctor.DiagResult) {
	for _, r := range results {
		icon := statusIcon(r.Status)
		fmt.Fprintf(w, "  [%s] %s: %s\n", icon, r.Name, r.Message)
		if r.Fix != "" {
			fmt.Fprintf(w, "      Fix: %s\n", r.Fix)
		}
	}
}

func statusIcon(s doctor.Status) string {
	switch s {
	case doctor.StatusOK:
		return "OK"
	case doctor.StatusWarn:
		return "!!"
	case doctor.StatusFail:
		return "FAIL"
	default:
		return "??"
	}
}
