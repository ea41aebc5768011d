package config_test

import (
	"fmt"
	"log"
	"os"

	"github.com/ajitpratap0/tabula/pkg/config"
)

// ExampleDefault demonstrates the default engine configuration
func ExampleDefault() {
	cfg := config.Default()

	fmt.Printf("Separator: %s\n", cfg.GroupBy.Separator)
	fmt.Printf("Categorical threshold: %.1f\n", cfg.Load.CategoricalThreshold)
	fmt.Printf("Log level: %s\n", cfg.Logging.Level)

	// Output:
	// Separator: |
	// Categorical threshold: 0.5
	// Log level: info
}

// ExampleConfig_Validate shows how to validate a configuration
// before using it.
func ExampleConfig_Validate() {
	cfg := config.Default()
	cfg.Metrics.Enabled = true

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	fmt.Println("Configuration is valid!")

	cfg.GroupBy.Separator = ""
	fmt.Println(cfg.Validate() != nil)

	// Output:
	// Configuration is valid!
	// true
}

// ExampleParse demonstrates environment variable substitution
func ExampleParse() {
	os.Setenv("TABULA_EXAMPLE_LEVEL", "debug")
	defer os.Unsetenv("TABULA_EXAMPLE_LEVEL")

	cfg := config.Default()
	err := config.Parse([]byte("logging:\n  level: ${TABULA_EXAMPLE_LEVEL}\n"), cfg)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(cfg.Logging.Level)
	fmt.Println(cfg.GroupBy.Separator)

	// Output:
	// debug
	// |
}
