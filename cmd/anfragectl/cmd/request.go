package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/anfrage/internal/client"
	"github.com/good-yellow-bee/anfrage/internal/models"
	"github.com/good-yellow-bee/anfrage/internal/validation"
	"github.com/good-yellow-bee/anfrage/internal/wizard"
)

// Inputs with a meaning of their own at any prompt.
const (
	inputBack  = "<"
	inputClear = "-"
	inputQuit  = ":q"
)

var (
	requestFlow     string
	requestStateDir string
)

// errQuit ends the wizard early; the saved state stays for the next run.
var errQuit = errors.New("wizard interrupted")

// requestCmd runs the request wizard on the terminal
var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Send a project request",
	Long: `Walk through the request wizard and send the result to the server.

Answers are saved after every input, so an interrupted run continues where
it stopped. At any prompt:
  <enter>  keep the shown value
  -        clear the value
  <        go back one step
  :q       stop and keep the answers

Example:
  anfragectl request --flow lite`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flow, err := flowByName(requestFlow)
		if err != nil {
			return err
		}

		dir := requestStateDir
		if dir == "" {
			base, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("locate config dir: %w", err)
			}
			dir = filepath.Join(base, "anfrage", "wizard")
		}
		store, err := wizard.NewFileStore(dir)
		if err != nil {
			return fmt.Errorf("open wizard state: %w", err)
		}
		PrintVerbose("wizard state: %s", dir)

		nav := wizard.NewNavigator(flow, store, newClient(""))
		runner := &wizardRunner{
			nav: nav,
			in:  bufio.NewReader(cmd.InOrStdin()),
			out: cmd.OutOrStdout(),
		}
		err = runner.run(cmd.Context())
		if errors.Is(err, errQuit) {
			fmt.Fprintln(runner.out, "Angaben gespeichert. Starte den Befehl erneut, um fortzufahren.")
			return nil
		}
		return err
	},
}

func init() {
	requestCmd.Flags().StringVarP(&requestFlow, "flow", "f", "full", "wizard flow (full, lite)")
	requestCmd.Flags().StringVar(&requestStateDir, "state-dir", "", "directory for saved answers (default user config dir)")
	rootCmd.AddCommand(requestCmd)
}

func flowByName(name string) (*wizard.Flow, error) {
	switch name {
	case "full", "":
		return wizard.FullFlow, nil
	case "lite":
		return wizard.LiteFlow, nil
	default:
		return nil, fmt.Errorf("unknown flow %q (want full or lite)", name)
	}
}

// wizardRunner asks for the fields of each step on a line-based terminal.
type wizardRunner struct {
	nav *wizard.Navigator
	in  *bufio.Reader
	out io.Writer
}

// errBack asks the runner to retreat one step.
var errBack = errors.New("back")

func (w *wizardRunner) run(ctx context.Context) error {
	for {
		pct, label := w.nav.Progress()
		fmt.Fprintf(w.out, "\n[%d/%d] %s (%d%%)\n", w.nav.Step()+1, len(w.nav.Flow().Steps), label, pct)

		err := w.askStep()
		if errors.Is(err, errBack) {
			if err := w.nav.Retreat(); err != nil && !errors.Is(err, wizard.ErrFirstStep) {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		if !w.nav.IsLast() {
			if err := w.nav.Advance(); err != nil {
				if w.reportStep(err) {
					continue
				}
				return err
			}
			continue
		}

		err = w.nav.Submit(ctx)
		if err == nil {
			fmt.Fprintln(w.out, "\nDanke! Deine Anfrage ist eingegangen.")
			return nil
		}
		var stepErr *wizard.StepError
		if errors.As(err, &stepErr) {
			w.reportStep(err)
			for w.nav.Step() > stepErr.Step {
				if err := w.nav.Retreat(); err != nil {
					return err
				}
			}
			continue
		}
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(w.out, "\n%s\n", apiErr.Message)
			w.printIssues(apiErr.Issues)
		}
		return err
	}
}

// reportStep prints step issues and reports whether err was one.
func (w *wizardRunner) reportStep(err error) bool {
	var stepErr *wizard.StepError
	if !errors.As(err, &stepErr) {
		return false
	}
	fmt.Fprintln(w.out, "\nBitte prüfe deine Angaben:")
	w.printIssues(stepErr.Issues)
	return true
}

func (w *wizardRunner) printIssues(issues *validation.Issues) {
	if issues == nil {
		return
	}
	for _, f := range issues.Fields() {
		for _, msg := range issues.Field(f) {
			fmt.Fprintf(w.out, "  %s: %s\n", f, msg)
		}
	}
}

func (w *wizardRunner) askStep() error {
	for _, name := range w.nav.Current().Fields {
		var err error
		switch name {
		case wizard.FieldFeatures:
			err = w.askFeatures()
		case wizard.FieldConsent:
			err = w.askConsent()
		case wizard.FieldNotes:
			if w.liteWithoutFeatures() {
				continue
			}
			err = w.askText(name)
		default:
			err = w.askText(name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *wizardRunner) value(name string) string {
	st := w.nav.State()
	return st.Get(name)
}

func (w *wizardRunner) liteWithoutFeatures() bool {
	return w.nav.Flow().Kind == models.FlowLite && w.value(wizard.FieldFeatureNeed) != wizard.FeatureNeedYes
}

func (w *wizardRunner) readLine(prompt string) (string, error) {
	fmt.Fprint(w.out, prompt)
	line, err := w.in.ReadString('\n')
	switch {
	case errors.Is(err, io.EOF) && line == "":
		return "", errQuit
	case err != nil && !errors.Is(err, io.EOF):
		return "", err
	}
	line = strings.TrimSpace(line)
	switch line {
	case inputBack:
		return "", errBack
	case inputQuit:
		return "", errQuit
	}
	return line, nil
}

func (w *wizardRunner) askText(name string) error {
	fd, _ := w.nav.Flow().Field(name)
	for {
		printOptions(w.out, fd.Options)
		current := w.value(name)
		line, err := w.readLine(promptFor(name, current))
		if err != nil {
			return err
		}
		switch line {
		case "":
			return nil
		case inputClear:
			line = ""
		default:
			line = pickOption(line, fd.Options)
		}
		if err := w.nav.Set(name, line); err != nil {
			fmt.Fprintf(w.out, "  %v\n", err)
			continue
		}
		return nil
	}
}

func (w *wizardRunner) askFeatures() error {
	flow := w.nav.Flow()
	if w.liteWithoutFeatures() {
		return nil
	}
	printOptions(w.out, flow.FeatureOptions)
	current := strings.Join(w.nav.State().Features, ", ")
	line, err := w.readLine(promptFor(wizard.FieldFeatures+" (durch Komma getrennt)", current))
	if err != nil {
		return err
	}
	switch line {
	case "":
		return nil
	case inputClear:
		return w.nav.SetFeatures(nil)
	}

	var features []string
	for _, part := range strings.Split(line, ",") {
		features = append(features, pickOption(strings.TrimSpace(part), flow.FeatureOptions))
	}
	return w.nav.SetFeatures(features)
}

func (w *wizardRunner) askConsent() error {
	current := "n"
	if w.nav.State().Consent {
		current = "j"
	}
	line, err := w.readLine(promptFor("Einverstanden mit der Kontaktaufnahme (j/n)", current))
	if err != nil {
		return err
	}
	if line == "" {
		return nil
	}
	switch strings.ToLower(line) {
	case "j", "ja", "y", "yes":
		return w.nav.SetConsent(true)
	default:
		return w.nav.SetConsent(false)
	}
}

func promptFor(label, current string) string {
	if current == "" {
		return label + ": "
	}
	return fmt.Sprintf("%s [%s]: ", label, current)
}

func printOptions(w io.Writer, options []string) {
	for i, o := range options {
		fmt.Fprintf(w, "  %d) %s\n", i+1, o)
	}
}

// pickOption maps a 1-based option number to its value.
func pickOption(input string, options []string) string {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(options) {
		return input
	}
	return options[n-1]
}
