// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/walteh/copywatch/pkg/status"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], nil, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code: 0 on a
// graceful stop, 1 on any error
func run(ctx context.Context, args []string, environ map[string]string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args for a nil slice
		args = []string{}
	}

	rootCmd, o := newRootCmd(environ)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && o.Logger != nil {
		// LOG_FILE may be the only channel an unattended run is watched on
		o.Logger.Error(fmt.Sprintf("Stopped: %v", err))
	}

	// flush queued log lines before reporting
	if cerr := o.Close(); cerr != nil {
		fmt.Fprintln(stderr, status.FormatError(cerr))
	}

	if err != nil {
		fmt.Fprintln(stderr, status.FormatError(err))
		return 1
	}
	return 0
}
