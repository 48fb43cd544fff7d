//go:build windows

package window

import (
	"context"
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"admute/internal/domain"
)

var (
	user32                   = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows          = user32.NewProc("EnumWindows")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")

	// Callbacks are a limited resource; one is created for the process and
	// results are collected under enumMu.
	enumMu       sync.Mutex
	enumResult   []domain.Window
	enumCallback = syscall.NewCallback(enumWindowProc)
)

func enumWindowProc(hwnd, _ uintptr) uintptr {
	n, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if n == 0 {
		return 1
	}
	buf := make([]uint16, n+1)
	copied, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if copied == 0 {
		return 1
	}
	enumResult = append(enumResult, domain.Window{Handle: hwnd, Title: windows.UTF16ToString(buf[:copied])})
	return 1
}

// Win32Enumerator lists top-level windows with EnumWindows. Hidden windows
// are included, matching what FindWindowEx would see.
type Win32Enumerator struct{}

// NewWin32Enumerator creates an enumerator backed by user32.dll.
func NewWin32Enumerator() *Win32Enumerator {
	return &Win32Enumerator{}
}

func (Win32Enumerator) Windows(ctx context.Context) ([]domain.Window, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := procEnumWindows.Find(); err != nil {
		return nil, fmt.Errorf("load EnumWindows: %w", err)
	}

	enumMu.Lock()
	defer enumMu.Unlock()
	enumResult = nil
	r, _, callErr := procEnumWindows.Call(enumCallback, 0)
	if r == 0 {
		return nil, fmt.Errorf("EnumWindows: %w", callErr)
	}
	wins := enumResult
	enumResult = nil
	return wins, nil
}
