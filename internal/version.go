// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version is overwritten at link time: -ldflags "-X github.com/azure/teamsfx/internal.Version=1.2.3".
var Version = "0.0.0-dev.0"

const userAgentEnvVar = "TEAMSFX_USER_AGENT"

func IsDevVersion() bool {
	return strings.Contains(Version, "-dev")
}

// UserAgent identifies teamsfx in outgoing requests, for example "teamsfx/1.2.3 (go1.24; linux/amd64)".
// TEAMSFX_USER_AGENT is appended when set.
func UserAgent() string {
	agent := fmt.Sprintf("teamsfx/%s (%s; %s/%s)", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if extra := strings.TrimSpace(os.Getenv(userAgentEnvVar)); extra != "" {
		agent += " " + extra
	}

	return agent
}
