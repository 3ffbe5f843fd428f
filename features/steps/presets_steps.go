//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"replaycut/cmd"
	"replaycut/infrastructure/config"

	"github.com/cucumber/godog"
)

type presetsContext struct {
	tempDir    string
	configPath string
	config     *config.Config
	output     *bytes.Buffer
	err        error
}

func InitializePresetsScenario(ctx *godog.ScenarioContext) {
	testCtx := &presetsContext{}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "presets-test-*")
		if err != nil {
			return c, err
		}
		*testCtx = presetsContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config.yaml"),
			config:     config.Default(),
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a config with the default presets$`, testCtx.aConfigWithTheDefaultPresets)
	ctx.Step(`^a config with the presets "([^"]*)"$`, testCtx.aConfigWithThePresets)
	ctx.Step(`^I add the preset "([^"]*)"$`, testCtx.iAddThePreset)
	ctx.Step(`^I remove the preset "([^"]*)"$`, testCtx.iRemoveThePreset)
	ctx.Step(`^I list the presets$`, testCtx.iListThePresets)
	ctx.Step(`^the saved presets should be "([^"]*)"$`, testCtx.theSavedPresetsShouldBe)
	ctx.Step(`^the preset listing should show "([^"]*)" as preset (\d+)$`, testCtx.theListingShouldShow)
	ctx.Step(`^the preset command should fail with "([^"]*)"$`, testCtx.thePresetCommandShouldFailWith)
}

func (p *presetsContext) aConfigWithTheDefaultPresets() error {
	return config.Save(p.config, p.configPath)
}

func (p *presetsContext) aConfigWithThePresets(list string) error {
	values, err := parseSecondsList(list)
	if err != nil {
		return err
	}
	p.config.Presets = values
	return config.Save(p.config, p.configPath)
}

func (p *presetsContext) iAddThePreset(value string) error {
	p.err = cmd.RunPresetsAddWithDependencies(p.config, p.configPath, value, p.output)
	return nil
}

func (p *presetsContext) iRemoveThePreset(value string) error {
	p.err = cmd.RunPresetsRemoveWithDependencies(p.config, p.configPath, value, p.output)
	return nil
}

func (p *presetsContext) iListThePresets() error {
	p.err = cmd.RunPresetsListWithDependencies(p.config, p.configPath, p.output)
	return p.err
}

func (p *presetsContext) theSavedPresetsShouldBe(list string) error {
	if p.err != nil {
		return fmt.Errorf("unexpected error: %v", p.err)
	}
	want, err := parseSecondsList(list)
	if err != nil {
		return err
	}

	saved, err := config.Load(p.configPath)
	if err != nil {
		return err
	}
	presets, err := saved.BuildPresets()
	if err != nil {
		return err
	}

	got := presets.Values()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		return fmt.Errorf("saved presets = %v, want %v", got, want)
	}
	return nil
}

func (p *presetsContext) theListingShouldShow(length string, position int) error {
	for _, line := range strings.Split(p.output.String(), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 2 && fields[0] == strconv.Itoa(position) {
			if got := strings.Join(fields[2:], " "); got != length {
				return fmt.Errorf("preset %d shows %q, want %q", position, got, length)
			}
			return nil
		}
	}
	return fmt.Errorf("preset %d not listed in:\n%s", position, p.output.String())
}

func (p *presetsContext) thePresetCommandShouldFailWith(text string) error {
	if p.err == nil {
		return fmt.Errorf("expected an error containing %q, got nil", text)
	}
	if !strings.Contains(p.err.Error(), text) {
		return fmt.Errorf("error = %q, want it to contain %q", p.err.Error(), text)
	}
	return nil
}

func parseSecondsList(list string) ([]int, error) {
	var values []int
	for _, part := range strings.Split(list, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid seconds %q in list", part)
		}
		values = append(values, n)
	}
	return values, nil
}
