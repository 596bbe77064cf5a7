// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package main

import (
	"maps"
	"os"
	"slices"

	"github.com/archcanvas/archcanvas/internal/pkg/enumflag"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

const (
	profileEnv     = "ARCHCANVAS_PROFILE"
	profilePathEnv = "ARCHCANVAS_PROFILE_PATH"
)

var (
	profileTypes = map[string]func(*profile.Profile){
		"block":     profile.BlockProfile,
		"cpu":       profile.CPUProfile,
		"goroutine": profile.GoroutineProfile,
		"mem":       profile.MemProfile,
		"alloc":     profile.MemProfileAllocs,
		"heap":      profile.MemProfileHeap,
		"mutex":     profile.MutexProfile,
		"clock":     profile.ClockProfile,
		"trace":     profile.TraceProfile,
	}
	profileTypeFlag = enumflag.New(os.Getenv(profileEnv), slices.Collect(maps.Keys(profileTypes))...)
	profilePathFlag = rootCmd.PersistentFlags().String("profile-path", os.Getenv(profilePathEnv), "Output directory for profiles")
)

func init() {
	rootCmd.PersistentFlags().Var(profileTypeFlag, "profile", profileTypeFlag.DocString("Enable profiling"))
	rootCmd.PersistentPreRun = func(*cobra.Command, []string) { stopProfile = startProfile() }
	rootCmd.PersistentPostRun = func(*cobra.Command, []string) { stopProfile.Stop() }
}

type noopStop struct{}

func (noopStop) Stop() {}

var stopProfile interface{ Stop() } = noopStop{}

// startProfile starts the --profile profile, if any.
func startProfile() interface{ Stop() } {
	if opt, ok := profileTypes[profileTypeFlag.String()]; ok {
		if *profilePathFlag == "" {
			*profilePathFlag = "."
		}
		return profile.Start(profile.ProfilePath(*profilePathFlag), opt, profile.Quiet)
	}
	return noopStop{}
}
