// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import "github.com/fatih/color"

// WithLinkFormat colors links and button commands.
func WithLinkFormat(link string, a ...any) string {
	return color.HiCyanString(link, a...)
}

// WithHighLightFormat colors names the user may want to copy, such as sample ids.
func WithHighLightFormat(text string, a ...any) string {
	return color.CyanString(text, a...)
}

func WithErrorFormat(text string, a ...any) string {
	return color.RedString(text, a...)
}

func WithWarningFormat(text string, a ...any) string {
	return color.YellowString(text, a...)
}

func WithSuccessFormat(text string, a ...any) string {
	return color.GreenString(text, a...)
}

// WithGrayFormat dims progress and other secondary text.
func WithGrayFormat(text string, a ...any) string {
	return color.New(color.FgHiBlack).Sprintf(text, a...)
}

func WithBold(text string, a ...any) string {
	return color.New(color.Bold).Sprintf(text, a...)
}

// WithBackticks wraps text with the backtick (`) character.
func WithBackticks(text string) string {
	return "`" + text + "`"
}
