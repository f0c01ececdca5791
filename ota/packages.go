// Copyright 2023 VMware, Inc.
//
// This product is licensed to you under the BSD-2 license (the "License").
// You may not use this product except in compliance with the BSD-2 License.
// This product may include a number of subcomponents with separate copyright
// notices and license terms. Your use of these subcomponents is subject to
// the terms and conditions of the subcomponent's license, as noted in the
// LICENSE file.
//
// SPDX-License-Identifier: BSD-2-Clause

package ota

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/exp/slices"
)

type packageFile struct {
	Packages []PackageSpec `toml:"package"`
}

// Target returns the composite target identifier of the package
func (p TufPackage) Target() string {
	return TargetID(p.Name, p.Version)
}

func (p TufPackage) String() string {
	return p.Target()
}

// CompilePackage validates a package spec
func CompilePackage(spec PackageSpec) (*TufPackage, error) {
	if spec.Name == "" || spec.Version == "" {
		return nil, ErrValidation{Msg: "package needs a name and a version"}
	}
	target := TargetID(spec.Name, spec.Version)
	hardware := make([]string, 0, len(spec.Hardware))
	for _, id := range spec.Hardware {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(hardware, id) {
			continue
		}
		hardware = append(hardware, id)
	}
	if len(hardware) == 0 {
		return nil, ErrValidation{Msg: fmt.Sprintf("package %s: at least one hardware id is required", target)}
	}
	format := DefaultTargetFormat
	if spec.Format != "" {
		format = spec.Format
	}
	pkg := &TufPackage{
		Name:        spec.Name,
		Version:     spec.Version,
		HardwareIDs: hardware,
		Format:      format,
	}
	switch {
	case spec.Path != "" && spec.URL != "":
		return nil, ErrValidation{Msg: fmt.Sprintf("package %s: path and url are mutually exclusive", target)}
	case spec.Path != "":
		pkg.Source.Path = spec.Path
	case spec.URL != "":
		u, err := url.Parse(spec.URL)
		if err != nil {
			return nil, ErrParse{Msg: fmt.Sprintf("package %s: %v", target, err)}
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, ErrParse{Msg: fmt.Sprintf("package %s: url %q is not absolute", target, spec.URL)}
		}
		pkg.Source.URL = u
	default:
		return nil, ErrValidation{Msg: fmt.Sprintf("package %s: either a path or a url is required", target)}
	}
	return pkg, nil
}

// CompilePackages validates every spec; it fails on the first invalid one.
func CompilePackages(specs []PackageSpec) ([]TufPackage, error) {
	pkgs := make([]TufPackage, 0, len(specs))
	for _, spec := range specs {
		pkg, err := CompilePackage(spec)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, *pkg)
	}
	return pkgs, nil
}

// ParsePackageSpecs decodes the [[package]] entries of a package file
func ParsePackageSpecs(data []byte) ([]PackageSpec, error) {
	var file packageFile
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, ErrParse{Msg: fmt.Sprintf("package file: %v", err)}
	}
	warnUndecoded("package file", md)
	return file.Packages, nil
}

// LoadPackageSpecs reads a package file. Relative package paths are
// resolved against the file's directory.
func LoadPackageSpecs(path string) ([]PackageSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrIO{Msg: fmt.Sprintf("reading package file %s", path), Err: err}
	}
	specs, err := ParsePackageSpecs(data)
	if err != nil {
		return nil, err
	}
	for i := range specs {
		if specs[i].Path != "" && !filepath.IsAbs(specs[i].Path) {
			specs[i].Path = filepath.Join(filepath.Dir(path), specs[i].Path)
		}
	}
	return specs, nil
}
