// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type sampleRow struct {
	Id    string   `json:"id" yaml:"id"`
	Title string   `json:"title" yaml:"title"`
	Tags  []string `json:"tags" yaml:"tags"`
}

func TestFormatters(t *testing.T) {
	rows := []sampleRow{{Id: "bot-sso", Title: "Bot App with SSO Enabled", Tags: []string{"Bot", "SSO"}}}

	t.Run("Json", func(t *testing.T) {
		formatter, err := NewFormatter("json")
		require.NoError(t, err)
		require.Equal(t, JsonFormat, formatter.Kind())

		var buf bytes.Buffer
		require.NoError(t, formatter.Format(rows, &buf))
		require.JSONEq(t, `[{"id":"bot-sso","title":"Bot App with SSO Enabled","tags":["Bot","SSO"]}]`, buf.String())
		require.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])
	})

	t.Run("Yaml", func(t *testing.T) {
		formatter, err := NewFormatter("YAML")
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, formatter.Format(rows, &buf))
		require.Contains(t, buf.String(), "- id: bot-sso\n")
		require.Contains(t, buf.String(), "  title: Bot App with SSO Enabled\n")
		require.Contains(t, buf.String(), "- SSO\n")
	})

	t.Run("None", func(t *testing.T) {
		formatter, err := NewFormatter("")
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, formatter.Format(rows, &buf))
		require.Empty(t, buf.String())
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := NewFormatter("table")
		require.Error(t, err)
	})
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()
	require.Equal(t, NoneFormat, GetFormatter(ctx).Kind())
	require.NotNil(t, GetWriter(ctx))

	var buf bytes.Buffer
	ctx = WithWriter(WithFormatter(ctx, &JsonFormatter{}), &buf)
	require.Equal(t, JsonFormat, GetFormatter(ctx).Kind())
	require.Same(t, &buf, GetWriter(ctx).(*bytes.Buffer))
}
