// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package create

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/azure/teamsfx/pkg/samples"
)

type ProjectType string

const (
	ProjectTypeSample   ProjectType = "sample"
	ProjectTypeTemplate ProjectType = "template"
)

// ProjectMetadata describes a project the user can start from: a Teams template or a published sample.
type ProjectMetadata struct {
	Id          string            `json:"id"`
	Type        ProjectType       `json:"type"`
	Platform    string            `json:"platform"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Data        map[string]string `json:"data,omitempty"`
}

//go:embed templateMetadata.json
var templateMetadataJson []byte

type templateMetadata struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ProjectType string `json:"project-type"`
}

// TemplateProjects lists the Teams templates shipped with the CLI.
func TemplateProjects() ([]ProjectMetadata, error) {
	var templates []templateMetadata
	if err := json.Unmarshal(templateMetadataJson, &templates); err != nil {
		return nil, fmt.Errorf("parsing template metadata: %w", err)
	}

	projects := make([]ProjectMetadata, 0, len(templates))
	for _, template := range templates {
		projects = append(projects, ProjectMetadata{
			Id:          template.Id,
			Type:        ProjectTypeTemplate,
			Platform:    "Teams",
			Name:        template.Name,
			Description: template.Description,
			Data: map[string]string{
				"capabilities": template.Id,
				"project-type": template.ProjectType,
			},
		})
	}

	return projects, nil
}

// SampleProjects converts a sample catalog into project metadata.
func SampleProjects(collection *samples.SampleCollection) []ProjectMetadata {
	projects := make([]ProjectMetadata, 0, len(collection.Samples))
	for _, sample := range collection.Samples {
		projects = append(projects, ProjectMetadata{
			Id:          sample.Id,
			Type:        ProjectTypeSample,
			Platform:    "Teams",
			Name:        sample.Title,
			Description: sample.FullDescription,
		})
	}

	return projects
}
