package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hbjs97/qaenv/internal/cache"
	"github.com/hbjs97/qaenv/internal/workenv"
	"github.com/spf13/cobra"
)

// ErrUnsafeRemove는 clean --all이 위험한 경로를 지우려 할 때의 sentinel error다.
var ErrUnsafeRemove = errors.New("안전하지 않은 삭제 경로")

func (a *App) newCleanCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "캐시 디렉토리 내용을 삭제한다",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runClean(cmd.OutOrStdout(), all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "작업 디렉토리 전체를 삭제")
	return cmd
}

func (a *App) runClean(w io.Writer, all bool) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	cwd, err := a.Getwd()
	if err != nil {
		return fmt.Errorf("cli.clean: %w", err)
	}
	env := workenv.Resolve(a.Getenv, cwd, cfg.Options())

	if !all {
		n, err := cache.Open(env.CacheDir).Purge()
		if errors.Is(err, cache.ErrNotDir) {
			return fmt.Errorf("cli.clean: %w (rm %s 후 qaenv activate 실행)", err, env.CacheDir)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "캐시 정리 완료: %s (%d개 항목 삭제)\n", env.CacheDir, n)
		return nil
	}

	if err := checkRemovable(env.WorkDir, cwd, a.HomeDir); err != nil {
		return err
	}
	if err := os.RemoveAll(env.WorkDir); err != nil {
		return fmt.Errorf("cli.clean: %w", err)
	}
	fmt.Fprintf(w, "작업 디렉토리 삭제 완료: %s\n", env.WorkDir)
	return nil
}

// checkRemovable은 루트, cwd(또는 그 상위), 홈 디렉토리 삭제를 거부한다.
func checkRemovable(target, cwd, home string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("cli.clean: %w", err)
	}
	if abs == string(filepath.Separator) || (home != "" && abs == filepath.Clean(home)) {
		return fmt.Errorf("cli.clean: %w: %s", ErrUnsafeRemove, abs)
	}
	rel, err := filepath.Rel(abs, filepath.Clean(cwd))
	if err == nil && (rel == "." || (rel != ".." && !startsWithParent(rel))) {
		return fmt.Errorf("cli.clean: %w: 현재 디렉토리를 포함함: %s", ErrUnsafeRemove, abs)
	}
	return nil
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
