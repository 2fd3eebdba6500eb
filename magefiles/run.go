//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Starts the companion compile server.
func (Run) Server() error {
	mg.Deps(Build.Binary)
	fmt.Println("Run compile server...")
	if _, err := executeCmd("bin/assetforge", withArgs(configArgs("serve")...), withStream()); err != nil {
		return err
	}
	return nil
}

// Watches the content root and prints changed assets.
func (Run) Watch() error {
	mg.Deps(Build.Binary)
	if _, err := executeCmd("bin/assetforge", withArgs(configArgs("watch")...), withStream()); err != nil {
		return err
	}
	return nil
}
