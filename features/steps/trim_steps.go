//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"replaycut/cmd"
	"replaycut/domain/video"

	"github.com/cucumber/godog"
)

// mockTrimmer records calls to Trim for verification
type mockTrimmer struct {
	calls       []trimCall
	shouldFail  bool
	failError   error
	fileChecker *mockFileChecker // Reference to mark output files as existing
}

type trimCall struct {
	req        *video.TrimRequest
	outputPath string
}

func (m *mockTrimmer) Trim(ctx context.Context, req *video.TrimRequest, outputPath string) error {
	if m.shouldFail {
		return m.failError
	}
	m.calls = append(m.calls, trimCall{req: req, outputPath: outputPath})
	if m.fileChecker != nil {
		m.fileChecker.existingFiles[outputPath] = true
	}
	return nil
}

// mockFileChecker simulates file existence and removal
type mockFileChecker struct {
	existingFiles map[string]bool
}

func (m *mockFileChecker) Exists(path string) bool {
	return m.existingFiles[path]
}

func (m *mockFileChecker) Remove(path string) error {
	if !m.existingFiles[path] {
		return fmt.Errorf("remove %s: no such file", path)
	}
	delete(m.existingFiles, path)
	return nil
}

// trimContext holds test state for trim scenarios
type trimContext struct {
	sourcePath  string
	trimmer     *mockTrimmer
	fileChecker *mockFileChecker
	output      *bytes.Buffer
	err         error
}

// SharedTrimContext is reset before each scenario via Before hook
var SharedTrimContext *trimContext

func getTrimContext() *trimContext {
	return SharedTrimContext
}

func InitializeTrimScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		fileChecker := &mockFileChecker{
			existingFiles: make(map[string]bool),
		}
		SharedTrimContext = &trimContext{
			trimmer:     &mockTrimmer{fileChecker: fileChecker},
			fileChecker: fileChecker,
			output:      &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedTrimContext = nil
		return c, nil
	})

	ctx.Step(`^a source video at "([^"]*)"$`, aSourceVideoAt)
	ctx.Step(`^no source video exists at "([^"]*)"$`, noSourceVideoExistsAt)
	ctx.Step(`^trimming fails with "([^"]*)"$`, trimmingFailsWith)
	ctx.Step(`^I keep the last "([^"]*)" of the video$`, iKeepTheLastOfTheVideo)
	ctx.Step(`^I keep the last "([^"]*)" of the video and keep the original$`, iKeepTheLastAndKeepTheOriginal)
	ctx.Step(`^I attempt to keep the last "([^"]*)" of the video$`, iAttemptToKeepTheLast)
	ctx.Step(`^the output file should be "([^"]*)"$`, theOutputFileShouldBe)
	ctx.Step(`^the trim should keep (\d+) seconds$`, theTrimShouldKeepSeconds)
	ctx.Step(`^the source video should have been removed$`, theSourceVideoShouldHaveBeenRemoved)
	ctx.Step(`^the source video should still exist$`, theSourceVideoShouldStillExist)
	ctx.Step(`^the trim should fail with "([^"]*)"$`, theTrimShouldFailWith)
}

func aSourceVideoAt(path string) error {
	t := getTrimContext()
	t.sourcePath = path
	t.fileChecker.existingFiles[path] = true
	return nil
}

func noSourceVideoExistsAt(path string) error {
	t := getTrimContext()
	t.sourcePath = path
	return nil
}

func trimmingFailsWith(msg string) error {
	t := getTrimContext()
	t.trimmer.shouldFail = true
	t.trimmer.failError = fmt.Errorf("%s", msg)
	return nil
}

func runTrim(last string, keepOriginal bool) error {
	t := getTrimContext()
	return cmd.RunTrimWithDependencies(
		context.Background(),
		t.trimmer,
		t.fileChecker,
		t.fileChecker,
		video.DefaultTrimSuffix,
		t.sourcePath,
		last,
		keepOriginal,
		slog.New(slog.DiscardHandler),
		t.output,
	)
}

func iKeepTheLastOfTheVideo(last string) error {
	if err := runTrim(last, false); err != nil {
		return fmt.Errorf("unexpected error: %v", err)
	}
	return nil
}

func iKeepTheLastAndKeepTheOriginal(last string) error {
	if err := runTrim(last, true); err != nil {
		return fmt.Errorf("unexpected error: %v", err)
	}
	return nil
}

func iAttemptToKeepTheLast(last string) error {
	t := getTrimContext()
	t.err = runTrim(last, false)
	return nil
}

func lastTrimCall() (trimCall, error) {
	t := getTrimContext()
	if len(t.trimmer.calls) == 0 {
		return trimCall{}, fmt.Errorf("no trim was performed")
	}
	return t.trimmer.calls[len(t.trimmer.calls)-1], nil
}

func theOutputFileShouldBe(expected string) error {
	call, err := lastTrimCall()
	if err != nil {
		return err
	}
	if call.outputPath != expected {
		return fmt.Errorf("expected output %q, got %q", expected, call.outputPath)
	}
	return nil
}

func theTrimShouldKeepSeconds(seconds int) error {
	call, err := lastTrimCall()
	if err != nil {
		return err
	}
	if call.req.Duration != seconds {
		return fmt.Errorf("expected %d seconds, got %d", seconds, call.req.Duration)
	}
	return nil
}

func theSourceVideoShouldHaveBeenRemoved() error {
	t := getTrimContext()
	if t.fileChecker.existingFiles[t.sourcePath] {
		return fmt.Errorf("source %s still exists", t.sourcePath)
	}
	return nil
}

func theSourceVideoShouldStillExist() error {
	t := getTrimContext()
	if !t.fileChecker.existingFiles[t.sourcePath] {
		return fmt.Errorf("source %s was removed", t.sourcePath)
	}
	return nil
}

func theTrimShouldFailWith(text string) error {
	t := getTrimContext()
	if t.err == nil {
		return fmt.Errorf("expected an error containing %q, got nil", text)
	}
	if !strings.Contains(t.err.Error(), text) {
		return fmt.Errorf("error = %q, want it to contain %q", t.err.Error(), text)
	}
	return nil
}
