//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Runs go mod download and then builds a static assetforge binary into bin/.
func (Build) Binary() error {
	if _, err := executeCmd("go", withArgs("mod", "download")); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/assetforge", "."), withEnv("CGO_ENABLED=0"), withStream()); err != nil {
		return err
	}
	return nil
}

// Compiles every asset under the configured content root.
func (Build) Assets() error {
	mg.Deps(Build.Binary)
	if _, err := executeCmd("bin/assetforge", withArgs(configArgs("compile")...), withStream()); err != nil {
		return err
	}
	return nil
}
