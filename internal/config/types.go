// Package config provides configuration loading and management for csvwizard.
//
// Configuration is loaded using Viper, supporting YAML config files and environment
// variable overrides. The defaults describe the standard three-step upload
// sequence, so the tool works out of the box against a backend that exposes
// the default endpoints.
//
// Key types:
//   - [Config] is the root configuration container with all settings
//   - [Loader] handles Viper-based configuration loading
//   - [StepConfig] defines a single upload step
//   - [APIConfig] contains backend connection settings
//
// Configuration priority (highest to lowest):
//  1. Environment variables (CSVWIZARD_ prefix)
//  2. Config file specified by CSVWIZARD_CONFIG_PATH
//  3. User config directory (platform-standard):
//     - Linux: ~/.config/csvwizard/csvwizard.yaml
//     - macOS: ~/Library/Application Support/csvwizard/csvwizard.yaml
//     - Windows: %APPDATA%\csvwizard\csvwizard.yaml
//  4. ./csvwizard.yaml
//  5. [DefaultConfig] defaults
package config

import "time"

// Config represents the root configuration structure.
//
// This is the main configuration container loaded by [Loader] and used throughout
// the application. Use [DefaultConfig] to get sensible defaults.
type Config struct {
	// API contains the backend connection settings.
	API APIConfig `mapstructure:"api"`

	// Steps is the ordered list of required upload steps.
	// Order matters: each step unlocks only after all previous steps complete.
	Steps []StepConfig `mapstructure:"steps"`

	// StepsManifest is an optional path to a CSV step manifest. When set,
	// its rows replace Steps.
	StepsManifest string `mapstructure:"steps_manifest"`

	// Mapping contains column mapping settings.
	Mapping MappingConfig `mapstructure:"mapping"`

	// Output contains terminal output and download settings.
	Output OutputConfig `mapstructure:"output"`

	// Server contains settings for the HTTP front end.
	Server ServerConfig `mapstructure:"server"`

	// Log contains logger settings.
	Log LogConfig `mapstructure:"log"`
}

// APIConfig contains backend API settings.
type APIConfig struct {
	// BaseURL is the scheme and host that rooted endpoint paths are joined to.
	// Default: "http://localhost:8080"
	BaseURL string `mapstructure:"base_url"`

	// Prefix is prepended to endpoints that are neither absolute URLs nor
	// rooted paths. Default: "/api/"
	Prefix string `mapstructure:"prefix"`

	// ConsolidateEndpoint is the endpoint queried by the consolidation action.
	// Default: "/api/Consolida-dados"
	ConsolidateEndpoint string `mapstructure:"consolidate_endpoint"`

	// Timeout bounds every backend request. Zero disables the timeout.
	// Default: 60s
	Timeout time.Duration `mapstructure:"timeout"`
}

// StepConfig describes one upload step.
type StepConfig struct {
	// ID is the stable, unique identifier of the step.
	ID string `mapstructure:"id"`

	// Title is the display title.
	Title string `mapstructure:"title"`

	// Description is the display description.
	Description string `mapstructure:"description"`

	// Endpoint is an absolute URL, a rooted path, or a fragment that gets
	// the API prefix.
	Endpoint string `mapstructure:"endpoint"`
}

// MappingConfig contains column mapping settings.
type MappingConfig struct {
	// StandardColumns is the fixed list of canonical field names CSV headers
	// can be mapped to. Duplicates are ignored.
	StandardColumns []string `mapstructure:"standard_columns"`
}

// OutputConfig contains terminal output and download settings.
type OutputConfig struct {
	// DownloadDir is where the consolidated JSON file is written.
	// Default: "." (current directory)
	DownloadDir string `mapstructure:"download_dir"`

	// DownloadName is the file name of the consolidated JSON download.
	// Default: "dados-consolidados.json"
	DownloadName string `mapstructure:"download_name"`

	// Color enables styled terminal output.
	// Default: true
	Color bool `mapstructure:"color"`
}

// ServerConfig contains HTTP front end settings.
type ServerConfig struct {
	// Addr is the listen address. Default: ":8090"
	Addr string `mapstructure:"addr"`

	// UploadDir holds files received by the HTTP front end while they are
	// forwarded to the backend. Empty uses the OS temp dir.
	UploadDir string `mapstructure:"upload_dir"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "warn"
	Level string `mapstructure:"level"`

	// Development switches to zap's human-readable development encoder.
	Development bool `mapstructure:"development"`
}

// DefaultDownloadName is the file name used for the consolidated data download.
const DefaultDownloadName = "dados-consolidados.json"

// DefaultConfig returns a new [Config] with sensible defaults.
//
// The defaults include the three standard upload steps (pessoa jurídica,
// operações, aditivo documentos), the canonical column list and the
// consolidation endpoint.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:             "http://localhost:8080",
			Prefix:              "/api/",
			ConsolidateEndpoint: "/api/Consolida-dados",
			Timeout:             60 * time.Second,
		},
		Steps: []StepConfig{
			{
				ID:          "pessoa-juridica",
				Title:       "Pessoa Jurídica",
				Description: "Upload do CSV de pessoas jurídicas",
				Endpoint:    "PessoaJuridica-csv",
			},
			{
				ID:          "operacoes",
				Title:       "Operações",
				Description: "Upload do CSV de operações",
				Endpoint:    "Operacoes-csv",
			},
			{
				ID:          "aditivo-documentos",
				Title:       "Aditivo Documentos",
				Description: "Upload do CSV de aditivos e documentos",
				Endpoint:    "Aditivodocumentos-csv",
			},
		},
		Mapping: MappingConfig{
			StandardColumns: []string{
				"Código",
				"CNPJ",
				"Nome",
				"CNAE",
				"DataNascimento/Abertura",
				"Sexo",
				"Estado",
				"civil",
				"Cep",
				"Logradouro",
				"numero",
				"Bairro",
				"logradouro",
				"Cidade",
				"UF",
				"Email",
				"NomeContato",
				"Telefone1",
				"Observacoes",
				"Cedente",
			},
		},
		Output: OutputConfig{
			DownloadDir:  ".",
			DownloadName: DefaultDownloadName,
			Color:        true,
		},
		Server: ServerConfig{
			Addr: ":8090",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
