// Package workenv resolves and initializes the QA working directory layout.
// It computes QAWORKDIR, QACACHEDIR and MPLCONFIGDIR, creates the directories,
// and writes a matplotlibrc selecting a non-interactive backend.
package workenv
