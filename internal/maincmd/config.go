package maincmd

import (
	"github.com/caarlos0/env/v6"

	"github.com/neon-lang/neon/lang/vm"
)

// Config overrides the VM's resource limits from the environment, so a
// deployment can tighten or loosen them without a rebuild. Field names
// follow the teacher's NEON_-prefixed convention for this binary's env
// vars (see maincmd.go's EnvPrefix).
type Config struct {
	MaxSteps     int `env:"MAX_STEPS" envDefault:"50000000"`
	MaxCallDepth int `env:"MAX_CALL_DEPTH" envDefault:"1024"`
}

// LoadConfig reads Config from the process environment, falling back to
// vm.DefaultConfig's values for any var left unset.
func LoadConfig() (vm.Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg, env.Options{Prefix: "NEON_"}); err != nil {
		return vm.Config{}, err
	}
	return vm.Config{MaxSteps: cfg.MaxSteps, MaxCallDepth: cfg.MaxCallDepth}, nil
}
