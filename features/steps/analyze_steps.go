//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"clipscan/cmd"
	"clipscan/domain/anomaly"
	"clipscan/domain/frame"
	"clipscan/domain/tensor"

	"github.com/cucumber/godog"
	"go.uber.org/zap"
)

// syntheticVideo serves uniform frames whose pixel value encodes the frame
// index, so the reconstructor can look up the scripted error per frame
type syntheticVideo struct {
	duration time.Duration
	broken   map[time.Duration]bool
}

func (v *syntheticVideo) Duration(ctx context.Context, videoPath string) (time.Duration, error) {
	return v.duration, nil
}

func (v *syntheticVideo) Grab(ctx context.Context, videoPath string, at time.Duration) ([]byte, error) {
	if v.broken[at] {
		return nil, errors.New("decoder returned no picture")
	}
	index := int(math.Round(at.Seconds() * frame.DefaultRate))
	pix := make([]byte, frame.BufferLen)
	for i := range pix {
		pix[i] = byte(index)
	}
	return pix, nil
}

type analyzeContext struct {
	video      *syntheticVideo
	files      map[string]bool
	errs       []float64
	loadFailed bool
	output     bytes.Buffer
	outcome    anomaly.Outcome
	err        error
}

type fileSet map[string]bool

func (f fileSet) Exists(path string) bool { return f[path] }

// reconstructor shifts every value by the error scripted for the frame whose
// index is encoded in the first pixel
func (a *analyzeContext) reconstructor() anomaly.Reconstructor {
	var mu sync.Mutex
	return anomaly.ReconstructorFunc(func(ctx context.Context, in tensor.Tensor) (tensor.Tensor, error) {
		mu.Lock()
		defer mu.Unlock()
		index := int(math.Round(float64((in[0]/2 + 0.5) * 255)))
		delta := float32(a.errs[index%len(a.errs)])
		out := make(tensor.Tensor, len(in))
		for i, v := range in {
			out[i] = v - delta
		}
		return out, nil
	})
}

func InitializeAnalyzeScenario(ctx *godog.ScenarioContext) {
	a := &analyzeContext{}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		*a = analyzeContext{
			video: &syntheticVideo{broken: map[time.Duration]bool{}},
			files: map[string]bool{},
			errs:  []float64{0},
		}
		return c, nil
	})

	ctx.Step(`^a ([\d.]+) second video "([^"]*)"$`, a.aSecondVideo)
	ctx.Step(`^the model reconstructs frames with errors (.+)$`, a.theModelReconstructsFramesWithErrors)
	ctx.Step(`^the model fails to load$`, a.theModelFailsToLoad)
	ctx.Step(`^the frame at ([\d.]+) seconds cannot be decoded$`, a.theFrameAtSecondsCannotBeDecoded)
	ctx.Step(`^I analyze "([^"]*)"$`, a.iAnalyze)
	ctx.Step(`^I analyze "([^"]*)" with threshold ([\d.]+)$`, a.iAnalyzeWithThreshold)
	ctx.Step(`^I analyze "([^"]*)" with (\d+) workers$`, a.iAnalyzeWithWorkers)
	ctx.Step(`^I analyze "([^"]*)" as json$`, a.iAnalyzeAsJSON)
	ctx.Step(`^the clip should be classified as "([^"]*)"$`, a.theClipShouldBeClassifiedAs)
	ctx.Step(`^the maximum score should be ([\d.]+)$`, a.theMaximumScoreShouldBe)
	ctx.Step(`^(\d+) frames should have been analyzed$`, a.framesShouldHaveBeenAnalyzed)
	ctx.Step(`^the output should contain "([^"]*)"$`, a.theOutputShouldContain)
	ctx.Step(`^the output should be a JSON outcome labelled "([^"]*)"$`, a.theOutputShouldBeAJSONOutcomeLabelled)
	ctx.Step(`^the command should fail with "([^"]*)"$`, a.theCommandShouldFailWith)
}

func (a *analyzeContext) aSecondVideo(seconds float64, name string) error {
	a.video.duration = time.Duration(seconds * float64(time.Second))
	a.files[name] = true
	return nil
}

func (a *analyzeContext) theModelReconstructsFramesWithErrors(list string) error {
	a.errs = nil
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return fmt.Errorf("invalid error value %q: %w", field, err)
		}
		a.errs = append(a.errs, v)
	}
	return nil
}

func (a *analyzeContext) theModelFailsToLoad() error {
	a.loadFailed = true
	return nil
}

func (a *analyzeContext) theFrameAtSecondsCannotBeDecoded(seconds float64) error {
	a.video.broken[time.Duration(seconds*float64(time.Second))] = true
	return nil
}

func (a *analyzeContext) run(input cmd.AnalyzeInput) error {
	loader := func() (anomaly.Reconstructor, error) {
		if a.loadFailed {
			return nil, errors.New("onnxruntime: invalid model file")
		}
		return a.reconstructor(), nil
	}

	input.Rate = frame.DefaultRate

	a.outcome, a.err = cmd.RunAnalyzeWithDependencies(
		context.Background(),
		a.video,
		loader,
		fileSet(a.files),
		zap.NewNop(),
		input,
		&a.output,
	)
	return nil
}

func (a *analyzeContext) iAnalyze(name string) error {
	return a.run(cmd.AnalyzeInput{InputPath: name})
}

func (a *analyzeContext) iAnalyzeWithThreshold(name string, threshold float64) error {
	return a.run(cmd.AnalyzeInput{InputPath: name, Threshold: threshold})
}

func (a *analyzeContext) iAnalyzeWithWorkers(name string, workers int) error {
	return a.run(cmd.AnalyzeInput{InputPath: name, Workers: workers})
}

func (a *analyzeContext) iAnalyzeAsJSON(name string) error {
	return a.run(cmd.AnalyzeInput{InputPath: name, Format: "json"})
}

func (a *analyzeContext) theClipShouldBeClassifiedAs(label string) error {
	if a.err != nil {
		return fmt.Errorf("analysis failed: %w", a.err)
	}
	if string(a.outcome.Label) != label {
		return fmt.Errorf("expected label %q, got %q", label, a.outcome.Label)
	}
	return nil
}

func (a *analyzeContext) theMaximumScoreShouldBe(expected float64) error {
	if math.Abs(a.outcome.MaxScore-expected) > 1e-4 {
		return fmt.Errorf("expected max score %.4f, got %.4f", expected, a.outcome.MaxScore)
	}
	return nil
}

func (a *analyzeContext) framesShouldHaveBeenAnalyzed(expected int) error {
	if a.outcome.FramesAnalyzed != expected {
		return fmt.Errorf("expected %d frames, got %d", expected, a.outcome.FramesAnalyzed)
	}
	return nil
}

func (a *analyzeContext) theOutputShouldContain(expected string) error {
	if !strings.Contains(a.output.String(), expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, a.output.String())
	}
	return nil
}

func (a *analyzeContext) theOutputShouldBeAJSONOutcomeLabelled(label string) error {
	if a.err != nil {
		return fmt.Errorf("analysis failed: %w", a.err)
	}
	var decoded anomaly.Outcome
	if err := json.Unmarshal(a.output.Bytes(), &decoded); err != nil {
		return fmt.Errorf("output is not JSON: %w\n%s", err, a.output.String())
	}
	if string(decoded.Label) != label {
		return fmt.Errorf("expected label %q, got %q", label, decoded.Label)
	}
	return nil
}

func (a *analyzeContext) theCommandShouldFailWith(expected string) error {
	if a.err == nil {
		return fmt.Errorf("expected an error containing %q, got success", expected)
	}
	if !strings.Contains(a.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got %q", expected, a.err.Error())
	}
	return nil
}
