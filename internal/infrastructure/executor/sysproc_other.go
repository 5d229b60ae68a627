//go:build !windows

package executor

import "syscall"

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
