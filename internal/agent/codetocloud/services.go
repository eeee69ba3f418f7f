// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package codetocloud

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

//go:embed azure_services.json
var azureServicesJson string

// AzureService is a catalog entry offered to the model when proposing resources.
type AzureService struct {
	Key         string
	Name        string
	Description string
}

// AzureServices returns the embedded catalog in document order.
func AzureServices() []AzureService {
	var services []AzureService
	gjson.Parse(azureServicesJson).ForEach(func(key, value gjson.Result) bool {
		services = append(services, AzureService{
			Key:         key.String(),
			Name:        value.Get("name").String(),
			Description: value.Get("description").String(),
		})
		return true
	})
	return services
}

func azureServicesPromptText() string {
	entries := make([]string, 0)
	for _, service := range AzureServices() {
		entries = append(entries, fmt.Sprintf("%s: %s", service.Name, service.Description))
	}
	return strings.Join(entries, "\n\n")
}
