// Package shell renders the initialized QA environment as shell code.
// It emits export/unset statements for POSIX shells and fish, a dotenv
// rendering, and the rc-file snippet that evaluates qaenv activate.
package shell
