package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"empires-server/internal/combat"
	"empires-server/internal/shared/config"
	"empires-server/internal/shared/logger"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "simulate:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	attackerSpec := fs.String("attacker", "", "attacking force, e.g. ground=40,light_cruiser=10")
	defenderSpec := fs.String("defender", "", "defending force, e.g. ground=30,defense_platform=5")
	strategyName := fs.String("strategy", cfg.Combat.Strategy, "resolution strategy (volley or unified)")
	trials := fs.Int("trials", cfg.Combat.SimulationTrials, "number of battles to simulate")
	seed := fs.Int64("seed", 0, "base seed; 0 draws fresh randomness")
	sectors := fs.Int("sectors", cfg.Combat.DefaultDefenderSectors, "sectors held by the defender")
	attackerStance := fs.String("attacker-stance", string(combat.StanceBalanced), "attacker stance")
	defenderStance := fs.String("defender-stance", string(combat.StanceBalanced), "defender stance")
	profilesPath := fs.String("profiles", cfg.Combat.ProfilesPath, "unit profile YAML file")
	rulesetPath := fs.String("ruleset", cfg.Combat.RulesetPath, "ruleset YAML file")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	verbose := fs.Bool("v", false, "log each battle at debug level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	attacker, err := parseForce(*attackerSpec)
	if err != nil {
		return fmt.Errorf("attacker: %w", err)
	}
	defender, err := parseForce(*defenderSpec)
	if err != nil {
		return fmt.Errorf("defender: %w", err)
	}

	profiles := combat.DefaultProfiles()
	if *profilesPath != "" {
		if profiles, err = combat.LoadProfilesFile(*profilesPath); err != nil {
			return err
		}
	}
	rules := combat.DefaultRuleset()
	if *rulesetPath != "" {
		if rules, err = combat.LoadRulesetFile(*rulesetPath); err != nil {
			return err
		}
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log := logger.New(os.Stderr, config.LoggingConfig{Level: level})

	strategy, err := combat.StrategyByName(*strategyName, profiles, rules, log)
	if err != nil {
		return err
	}

	opts := combat.Options{
		AttackerStance:  combat.Stance(*attackerStance),
		DefenderStance:  combat.Stance(*defenderStance),
		DefenderSectors: *sectors,
		Seed:            *seed,
	}

	report, err := combat.SimulateWinRate(strategy, attacker, defender, opts, *trials)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(out, report)
	return nil
}

// parseForce reads a comma-separated list of unit=count pairs.
func parseForce(spec string) (combat.Force, error) {
	force := combat.Force{}
	if strings.TrimSpace(spec) == "" {
		return force, fmt.Errorf("force is required")
	}

	known := map[combat.UnitType]bool{}
	for _, unit := range combat.UnitTypes {
		known[unit] = true
	}

	for _, part := range strings.Split(spec, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return force, fmt.Errorf("expected unit=count, got %q", part)
		}
		unit := combat.UnitType(strings.TrimSpace(name))
		if !known[unit] {
			return force, fmt.Errorf("unknown unit type %q", name)
		}
		count, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return force, fmt.Errorf("%s: %w", unit, err)
		}
		if count < 0 {
			return force, fmt.Errorf("%s: count must not be negative", unit)
		}
		force = force.With(unit, force.Count(unit)+count)
	}
	return force, nil
}

func printReport(out io.Writer, report combat.WinRateReport) {
	fmt.Fprintf(out, "strategy:          %s\n", report.Strategy)
	fmt.Fprintf(out, "trials:            %d\n", report.Trials)
	fmt.Fprintf(out, "attacker win rate: %.1f%%\n", report.AttackerWinRate*100)
	fmt.Fprintf(out, "mean losses:       attacker %.1f, defender %.1f\n", report.MeanAttackerLosses, report.MeanDefenderLosses)
	fmt.Fprintf(out, "mean captured:     %.2f sectors\n", report.MeanSectorsCaptured)
	fmt.Fprintf(out, "ground overrides:  %d\n", report.GroundOverrides)

	outcomes := make([]string, 0, len(report.Outcomes))
	for outcome := range report.Outcomes {
		outcomes = append(outcomes, string(outcome))
	}
	sort.Strings(outcomes)
	for _, outcome := range outcomes {
		fmt.Fprintf(out, "  %-20s %d\n", outcome, report.Outcomes[combat.Outcome(outcome)])
	}
}
