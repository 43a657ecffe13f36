package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// version describes the binary from its embedded build info
func version() string {
	v, revision, modified := "dev", "unknown", ""

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				if setting.Value == "true" {
					modified = "+dirty"
				}
			}
		}
	}

	return fmt.Sprintf("%s (%s%s, %s %s/%s)", v, revision, modified, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
