package main

import (
	"crypto/sha256"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/aurumquant/xau-signal-engine/cmd/common"
	"github.com/aurumquant/xau-signal-engine/internal/license"
	"github.com/aurumquant/xau-signal-engine/pkg/config"
)

const AppName = "License Admin"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "version", "-version", "--version":
		common.PrintVersion(AppName)
		return
	case "help", "-help", "--help":
		printUsage()
		return
	}

	common.LoadEnvironment(".env")

	manager, err := openManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open license store: %v\n", err)
		os.Exit(1)
	}

	if err := dispatch(manager, command, args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func openManager() (*license.Manager, error) {
	path := os.Getenv("LICENSE_STORE")
	if path == "" {
		path = config.Default().LicenseStore
	}
	store, err := license.NewStore(path)
	if err != nil {
		return nil, err
	}
	return license.NewManager(store), nil
}

func dispatch(manager *license.Manager, command string, args []string) error {
	switch command {
	case "generate":
		return cmdGenerate(manager, args)
	case "activate":
		return cmdActivate(manager, args)
	case "verify":
		return cmdVerify(manager, args)
	case "revoke":
		return cmdRevoke(manager, args)
	case "reinstate":
		return cmdReinstate(manager, args)
	case "extend":
		return cmdExtend(manager, args)
	case "list":
		return cmdList(manager)
	case "stats":
		return cmdStats(manager)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func printUsage() {
	fmt.Printf("%s - manage access codes for the signal engine\n\n", AppName)
	fmt.Println("USAGE:")
	fmt.Println("  license-admin <command> [options]")
	fmt.Println()
	fmt.Println("COMMANDS:")
	fmt.Println("  generate   Create one or more license codes")
	fmt.Println("  activate   Bind a code to a device")
	fmt.Println("  verify     Check a code against a device")
	fmt.Println("  revoke     Deactivate a code")
	fmt.Println("  reinstate  Re-enable a revoked code")
	fmt.Println("  extend     Add days to a code's expiry")
	fmt.Println("  list       Show every license")
	fmt.Println("  stats      Show store totals")
	fmt.Println()
	fmt.Println("The store path comes from the LICENSE_STORE environment variable")
	fmt.Println("(default licenses.json).")
}

func cmdGenerate(manager *license.Manager, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	planName := fs.String("plan", "trial", "Plan: trial, starter, monthly or lifetime")
	count := fs.Int("count", 1, "Number of codes to generate")
	user := fs.String("user", "", "User name to attach to the license")
	notes := fs.String("notes", "", "Free-form notes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	plan, err := license.ParsePlan(*planName)
	if err != nil {
		return err
	}

	if *count <= 1 {
		lic, err := manager.Create(plan, *user, *notes)
		if err != nil {
			return err
		}
		fmt.Printf("Generated %s license: %s\n", lic.Plan, lic.Key)
		if lic.ExpiresAt != nil {
			fmt.Printf("Expires: %s\n", lic.ExpiresAt.Format("2006-01-02"))
		}
		return nil
	}

	licenses, err := manager.CreateBatch(plan, *count, *notes)
	if err != nil {
		return err
	}
	fmt.Printf("Generated %d %s licenses:\n", len(licenses), plan)
	for _, lic := range licenses {
		fmt.Printf("  %s\n", lic.Key)
	}
	return nil
}

func cmdActivate(manager *license.Manager, args []string) error {
	fs := flag.NewFlagSet("activate", flag.ExitOnError)
	device := fs.String("device", "", "Device ID to bind (default: this machine)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	code, err := requireCode(fs)
	if err != nil {
		return err
	}

	deviceID := *device
	if deviceID == "" {
		deviceID = machineID()
	}

	lic, err := manager.Activate(code, deviceID)
	if err != nil {
		return err
	}

	fmt.Printf("Activated %s for device %s\n", lic.Key, deviceID)
	if lic.ExpiresAt != nil {
		fmt.Printf("Valid until %s\n", lic.ExpiresAt.Format("2006-01-02 15:04"))
	} else {
		fmt.Println("Lifetime license, no expiry")
	}
	return nil
}

func cmdVerify(manager *license.Manager, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	device := fs.String("device", "", "Device ID to check (default: this machine)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	code, err := requireCode(fs)
	if err != nil {
		return err
	}

	deviceID := *device
	if deviceID == "" {
		deviceID = machineID()
	}

	lic, err := manager.Verify(code, deviceID)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	fmt.Printf("License %s is valid (%s plan)\n", lic.Key, lic.Plan)
	if lic.ExpiresAt != nil {
		fmt.Printf("Expires %s\n", lic.ExpiresAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func cmdRevoke(manager *license.Manager, args []string) error {
	fs := flag.NewFlagSet("revoke", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	code, err := requireCode(fs)
	if err != nil {
		return err
	}
	if err := manager.Revoke(code); err != nil {
		return err
	}
	fmt.Printf("Revoked %s\n", code)
	return nil
}

func cmdReinstate(manager *license.Manager, args []string) error {
	fs := flag.NewFlagSet("reinstate", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	code, err := requireCode(fs)
	if err != nil {
		return err
	}
	if err := manager.Reinstate(code); err != nil {
		return err
	}
	fmt.Printf("Reinstated %s\n", code)
	return nil
}

func cmdExtend(manager *license.Manager, args []string) error {
	fs := flag.NewFlagSet("extend", flag.ExitOnError)
	days := fs.Int("days", 30, "Days to add to the expiry")
	if err := fs.Parse(args); err != nil {
		return err
	}
	code, err := requireCode(fs)
	if err != nil {
		return err
	}

	lic, err := manager.Extend(code, *days)
	if err != nil {
		return err
	}
	fmt.Printf("Extended %s by %d days, new expiry %s\n",
		lic.Key, *days, lic.ExpiresAt.Format("2006-01-02 15:04"))
	return nil
}

func cmdList(manager *license.Manager) error {
	licenses := manager.List()
	if len(licenses) == 0 {
		fmt.Println("No licenses in store")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Key", "Plan", "User", "Status", "Device", "Expires"})

	now := time.Now()
	for _, lic := range licenses {
		t.AppendRow(table.Row{
			lic.Key,
			lic.Plan,
			lic.UserName,
			statusText(lic, now),
			lic.DeviceID,
			expiryText(lic),
		})
	}
	t.Render()
	return nil
}

func cmdStats(manager *license.Manager) error {
	stats := manager.Stats()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Metric", "Count"})
	t.AppendRows([]table.Row{
		{"Total", stats.Total},
		{"Activated", stats.Activated},
		{"Revoked", stats.Revoked},
		{"Expired", stats.Expired},
	})
	t.Render()
	return nil
}

// requireCode returns the single positional license code argument
func requireCode(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one license code argument")
	}
	return fs.Arg(0), nil
}

func statusText(lic *license.License, now time.Time) string {
	switch {
	case !lic.Active:
		return text.FgRed.Sprint("revoked")
	case lic.Expired(now):
		return text.FgYellow.Sprint("expired")
	case lic.Used:
		return text.FgGreen.Sprint("active")
	default:
		return "unused"
	}
}

func expiryText(lic *license.License) string {
	if lic.ExpiresAt == nil {
		return "lifetime"
	}
	return lic.ExpiresAt.Format("2006-01-02")
}

// machineID derives a stable device identifier from the hostname
func machineID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown-host"
	}
	sum := sha256.Sum256([]byte(host))
	return fmt.Sprintf("%x", sum[:6])
}
