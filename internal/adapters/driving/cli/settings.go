package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show current settings",
	Long: `Shows the resolved settings, with defaults applied and secrets masked,
and reports whether they are complete enough to run the engine.`,
	Args: cobra.NoArgs,
	RunE: runSettingsShow,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long: `Run an interactive wizard that asks for your home address, the source and
destination calendars and the transit API key, and writes the config file.
Existing values are offered as defaults.`,
	Args: cobra.NoArgs,
	RunE: runInitWizard,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(initCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Config file: %s\n\n", settingsService.Path())

	cmd.Println("[General]")
	cmd.Printf("  Home address: %s\n", valueOrUnset(settings.HomeAddress))
	cmd.Printf("  Timezone: %s\n", settings.Timezone)
	cmd.Printf("  Look forward: %d days\n", settings.LookForwardDays)
	cmd.Printf("  Max transit: %s\n", settings.MaxTransit)
	cmd.Printf("  Retention: %d days\n", settings.RetentionDays)
	cmd.Println()

	printCalendar(cmd, "Source Calendar", settings.Source)
	printCalendar(cmd, "Destination Calendar", settings.Destination)

	if settings.Source.Type == domain.CalendarGoogle || settings.Destination.Type == domain.CalendarGoogle {
		cmd.Println("[Google]")
		cmd.Printf("  Client ID: %s\n", valueOrUnset(settings.Google.ClientID))
		cmd.Printf("  Client secret: %s\n", maskedOrUnset(settings.Google.ClientSecret))
		cmd.Printf("  Refresh token: %s\n", maskedOrUnset(settings.Google.RefreshToken))
		cmd.Println()
	}

	cmd.Println("[Transit]")
	cmd.Printf("  Provider: %s\n", settings.Transit.Provider)
	cmd.Printf("  Mode: %s\n", settings.Transit.Mode)
	cmd.Printf("  API key: %s\n", maskedOrUnset(settings.Transit.APIKey))
	cmd.Printf("  Requests per second: %g\n", settings.Transit.RequestsPerSecond)
	cmd.Println()

	cmd.Println("[Schedule]")
	cmd.Printf("  Check interval: %s\n", settings.Schedule.CheckInterval)
	cmd.Printf("  Daily update: %s\n", settings.Schedule.DailyUpdateTime)
	cmd.Printf("  Weekly cleanup: %s\n", settings.Schedule.WeeklyCleanup)
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Driver: %s\n", settings.Store.Driver)
	switch settings.Store.Driver {
	case domain.StorePostgres:
		cmd.Printf("  DSN: %s\n", maskedOrUnset(settings.Store.DSN))
	case domain.StoreSQLite:
		cmd.Printf("  Path: %s\n", valueOr(settings.Store.Path, "(default)"))
	}
	cmd.Printf("  Status server: %s\n", valueOr(settings.HTTPListen, "(disabled)"))
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'transitsync init' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func printCalendar(cmd *cobra.Command, title string, cal domain.CalendarSettings) {
	cmd.Printf("[%s]\n", title)
	cmd.Printf("  Type: %s\n", cal.Type)
	switch cal.Type {
	case domain.CalendarGoogle:
		cmd.Printf("  Calendar ID: %s\n", valueOr(cal.CalendarID, "primary"))
	default:
		cmd.Printf("  URL: %s\n", valueOrUnset(cal.URL))
		cmd.Printf("  Username: %s\n", valueOrUnset(cal.Username))
		cmd.Printf("  Password: %s\n", maskedOrUnset(cal.Password))
	}
	cmd.Println()
}

func runInitWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	w := &wizard{cmd: cmd, in: cmd.InOrStdin(), reader: bufio.NewReader(cmd.InOrStdin())}

	cmd.Println("transitsync Setup Wizard")
	cmd.Println("========================")
	cmd.Println()

	cmd.Println("Step 1: Home")
	cmd.Println("------------")
	settings.HomeAddress = w.ask("Home address", settings.HomeAddress)
	for {
		tz := w.ask("Timezone (IANA name)", defaultTimezone(settings.Timezone))
		loc, err := time.LoadLocation(tz)
		if err == nil {
			settings.Timezone, settings.Location = tz, loc
			break
		}
		cmd.Printf("Unknown timezone %q.\n", tz)
	}
	cmd.Println()

	cmd.Println("Step 2: Source Calendar")
	cmd.Println("-----------------------")
	settings.Source = w.calendar(settings.Source)
	cmd.Println()

	cmd.Println("Step 3: Destination Calendar")
	cmd.Println("----------------------------")
	cmd.Println("Use a calendar dedicated to transit events: every timed event on a")
	cmd.Println("rebuilt date is deleted from it.")
	settings.Destination = w.calendar(settings.Destination)
	cmd.Println()

	if settings.Source.Type == domain.CalendarGoogle || settings.Destination.Type == domain.CalendarGoogle {
		cmd.Println("Google OAuth client (Calendar API enabled, refresh token issued for it)")
		settings.Google.ClientID = w.ask("Client ID", settings.Google.ClientID)
		settings.Google.ClientSecret = w.secret("Client secret", settings.Google.ClientSecret)
		settings.Google.RefreshToken = w.secret("Refresh token", settings.Google.RefreshToken)
		cmd.Println()
	}

	cmd.Println("Step 4: Transit")
	cmd.Println("---------------")
	settings.Transit.APIKey = w.secret("HERE API key", settings.Transit.APIKey)
	modes := []domain.TransitMode{domain.ModeTransit, domain.ModeDriving, domain.ModeWalking, domain.ModeCycling}
	settings.Transit.Mode = modes[w.choose("Transit mode", modeNames(modes), indexOfMode(modes, settings.Transit.Mode))-1]
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Settings saved to %s\n", settingsService.Path())
	cmd.Println("Secrets may also be given as ${ENV_VAR} references in the file.")
	return nil
}

// wizard reads answers from the command's input.
type wizard struct {
	cmd    *cobra.Command
	in     io.Reader
	reader *bufio.Reader
}

func (w *wizard) ask(label, current string) string {
	if current != "" {
		w.cmd.Printf("%s [%s]: ", label, current)
	} else {
		w.cmd.Printf("%s: ", label)
	}
	if answer := readLine(w.reader); answer != "" {
		return answer
	}
	return current
}

func (w *wizard) secret(label, current string) string {
	if current != "" {
		w.cmd.Printf("%s [%s, enter to keep]: ", label, maskAPIKey(current))
	} else {
		w.cmd.Printf("%s: ", label)
	}
	answer := readPassword(w.in, w.reader)
	if f, ok := w.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		w.cmd.Println()
	}
	if answer != "" {
		return answer
	}
	return current
}

func (w *wizard) choose(label string, options []string, current int) int {
	for i, opt := range options {
		w.cmd.Printf("  %d. %s\n", i+1, opt)
	}
	w.cmd.Printf("%s [%d]: ", label, current)
	return parseChoice(readLine(w.reader), len(options), current)
}

func (w *wizard) calendar(cal domain.CalendarSettings) domain.CalendarSettings {
	types := []domain.CalendarType{domain.CalendarCalDAV, domain.CalendarGoogle}
	current := 1
	if cal.Type == domain.CalendarGoogle {
		current = 2
	}
	cal.Type = types[w.choose("Calendar type", []string{"CalDAV", "Google Calendar"}, current)-1]

	if cal.Type == domain.CalendarGoogle {
		cal.CalendarID = w.ask("Calendar ID", valueOr(cal.CalendarID, "primary"))
		return cal
	}
	cal.URL = w.ask("Collection URL", cal.URL)
	cal.Username = w.ask("Username", cal.Username)
	cal.Password = w.secret("Password", cal.Password)
	return cal
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func maskedOrUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return maskAPIKey(s)
}

func valueOrUnset(s string) string {
	return valueOr(s, "(not set)")
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func defaultTimezone(current string) string {
	if current != "" && current != "UTC" {
		return current
	}
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	if name := time.Local.String(); name != "Local" {
		return name
	}
	return "UTC"
}

func modeNames(modes []domain.TransitMode) []string {
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return names
}

func indexOfMode(modes []domain.TransitMode, mode domain.TransitMode) int {
	for i, m := range modes {
		if m == mode {
			return i + 1
		}
	}
	return 1
}
