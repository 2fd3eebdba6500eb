package core

import (
	"errors"
)

var (
	ErrAssetNotFound             = errors.New("asset not found")
	ErrAssetNotCompiled          = errors.New("asset not compiled")
	ErrCorruptData               = errors.New("corrupt asset data")
	ErrRemoteCompilerUnavailable = errors.New("no remote compiler available")
	ErrSaverNotFound             = errors.New("no saver for asset")
	ErrLoaderNotFound            = errors.New("no loader for asset")
	ErrWrongAssetType            = errors.New("asset resolved to a different type")
	ErrResolutionCycle           = errors.New("asset resolution cycle")
	ErrAlreadyRegistered         = errors.New("already registered")
	ErrWatcherClosed             = errors.New("watcher already closed")
	ErrUnknown                   = errors.New("unknown")
)
