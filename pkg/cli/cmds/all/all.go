// Package all registers all shell commands.
package all

import (
	_ "github.com/robotalks/picoborg.go/pkg/cli/cmds/borg"
	_ "github.com/robotalks/picoborg.go/pkg/cli/cmds/nav2d"
)
