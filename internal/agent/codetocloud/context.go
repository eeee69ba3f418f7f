// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package codetocloud

import (
	"github.com/azure/teamsfx/pkg/chat"
	"github.com/azure/teamsfx/pkg/workspace"
)

// Context is the state of code to cloud conversations about one workspace.
type Context struct {
	workspace *workspace.Context
	// recommendations holds the answers that recommended or changed Azure resources.
	recommendations *chat.History
}

// NewContext creates the context of a workspace. A nil history starts an empty one.
func NewContext(ws *workspace.Context, recommendations *chat.History) *Context {
	if recommendations == nil {
		recommendations = chat.NewHistory()
	}

	return &Context{workspace: ws, recommendations: recommendations}
}

func (c *Context) Workspace() *workspace.Context {
	return c.workspace
}

func (c *Context) Recommendations() *chat.History {
	return c.recommendations
}
