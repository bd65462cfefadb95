package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hbjs97/qaenv/internal/cache"
	"github.com/hbjs97/qaenv/internal/workenv"
	"github.com/spf13/cobra"
)

// statusReport는 status --json 출력 형식이다.
type statusReport struct {
	workenv.Env
	WorkDirExists  bool  `json:"workdir_exists"`
	CacheDirExists bool  `json:"cachedir_exists"`
	RCFileExists   bool  `json:"rcfile_exists"`
	CacheEntries   int   `json:"cache_entries"`
	CacheBytes     int64 `json:"cache_bytes"`
}

func (a *App) newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "해석된 경로와 산출물 존재 여부를 표시한다 (파일시스템 변경 없음)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStatus(cmd.OutOrStdout(), jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON으로 출력")
	return cmd
}

func (a *App) runStatus(w io.Writer, jsonOutput bool) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	cwd, err := a.Getwd()
	if err != nil {
		return fmt.Errorf("cli.status: %w", err)
	}

	env := workenv.Resolve(a.Getenv, cwd, cfg.Options())
	report := statusReport{
		Env:            env,
		WorkDirExists:  isDir(env.WorkDir),
		CacheDirExists: isDir(env.CacheDir),
		RCFileExists:   fileExists(env.RCPath()),
	}
	// 캐시 경로가 디렉토리가 아니면 합계 없이 존재 여부만 보고한다.
	c := cache.Open(env.CacheDir)
	entries, err := c.Entries()
	if err != nil && !errors.Is(err, cache.ErrNotDir) {
		return err
	}
	if err == nil {
		report.CacheEntries = len(entries)
		if report.CacheBytes, err = c.Size(); err != nil {
			return err
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(w, "QAWORKDIR:    %s %s\n", env.WorkDir, mark(report.WorkDirExists))
	fmt.Fprintf(w, "QACACHEDIR:   %s %s\n", env.CacheDir, mark(report.CacheDirExists))
	fmt.Fprintf(w, "MPLCONFIGDIR: %s\n", env.MPLConfigDir)
	fmt.Fprintf(w, "matplotlibrc: %s %s\n", env.RCPath(), mark(report.RCFileExists))
	fmt.Fprintf(w, "cache:        %d개 항목, %d bytes\n", report.CacheEntries, report.CacheBytes)
	return nil
}

func mark(ok bool) string {
	if ok {
		return "(있음)"
	}
	return "(없음)"
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
