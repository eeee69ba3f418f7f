// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package create

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed prompts/match_project.md
var matchProjectPrompt string

//go:embed prompts/describe_project.md
var describeProjectPrompt string

//go:embed prompts/brief_describe_project.md
var briefDescribeProjectPrompt string

func projectMatchSystemPrompt(candidates []ProjectMetadata) (string, error) {
	type candidate struct {
		Id          string      `json:"id"`
		Type        ProjectType `json:"type"`
		Name        string      `json:"name"`
		Description string      `json:"description"`
	}

	listed := make([]candidate, 0, len(candidates))
	for _, project := range candidates {
		listed = append(listed, candidate{
			Id:          project.Id,
			Type:        project.Type,
			Name:        project.Name,
			Description: project.Description,
		})
	}

	data, err := json.Marshal(listed)
	if err != nil {
		return "", fmt.Errorf("encoding candidate projects: %w", err)
	}

	return fmt.Sprintf(matchProjectPrompt, data), nil
}

func projectUserPrompt(project ProjectMetadata) string {
	data, err := json.Marshal(project)
	if err != nil {
		// ProjectMetadata holds only strings
		data = []byte(project.Id)
	}

	return fmt.Sprintf("The project you are looking for is '%s'.", data)
}
