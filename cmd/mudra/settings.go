package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/store"
)

// errUsage is returned for a malformed settings command line.
var errUsage = errors.New("usage: mudra settings [list | set key=value... | unset key...]")

func execSettings(configPath, dbPath string, args []string, out io.Writer) error {
	_, st, err := openStore(configPath, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()
	return settingsCommand(st.Settings(), configPath, args, out)
}

func settingsCommand(repo *store.SettingsRepository, configPath string, args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "list" {
		return listSettings(repo, out)
	}

	switch args[0] {
	case "set":
		if len(args) < 2 {
			return errUsage
		}
		values := make(map[string]string, len(args)-1)
		for _, kv := range args[1:] {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				return fmt.Errorf("%w: %q is not key=value", errUsage, kv)
			}
			values[k] = v
		}

		merged, err := repo.All()
		if err != nil {
			return err
		}
		for k, v := range values {
			merged[k] = v
		}
		if _, err := config.Load(configPath, merged); err != nil {
			return err
		}
		if err := repo.SetAll(values); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved %d setting(s)\n", len(values))
		return nil

	case "unset":
		if len(args) < 2 {
			return errUsage
		}
		for _, k := range args[1:] {
			if err := repo.Delete(k); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("setting %q is not set", k)
				}
				return err
			}
		}
		fmt.Fprintf(out, "Removed %d setting(s)\n", len(args)-1)
		return nil
	}
	return errUsage
}

func listSettings(repo *store.SettingsRepository, out io.Writer) error {
	settings, err := repo.List()
	if err != nil {
		return err
	}
	if len(settings) == 0 {
		fmt.Fprintln(out, "No stored settings. Known keys:")
		for _, k := range config.Keys() {
			fmt.Fprintf(out, "  %s\n", k)
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE\tUPDATED")
	for _, s := range settings {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Key, s.Value, s.UpdatedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func execSessions(configPath, dbPath string, limit int, out io.Writer) error {
	_, st, err := openStore(configPath, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()
	return listSessions(st.Sessions(), limit, out)
}

func listSessions(repo *store.SessionRepository, limit int, out io.Writer) error {
	sessions, err := repo.Recent(limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tFRAMES\tREASON")
	for _, s := range sessions {
		duration := "running"
		if s.EndedAt != nil {
			duration = s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			s.ID, s.StartedAt.Local().Format(time.DateTime), duration, s.Frames, s.Reason)
	}
	return w.Flush()
}
