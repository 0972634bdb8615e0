package service

import (
	"errors"
	"fmt"
	"sync"

	"deploy_config/internal/app/port"
	"deploy_config/internal/app/validation"
	"deploy_config/internal/domain/entity"
	"deploy_config/internal/infrastructure/accountloader"
	"deploy_config/internal/infrastructure/configloader"
	"deploy_config/internal/infrastructure/envresolver"
	"deploy_config/internal/pkg/metrics"
)

// ConfigOptions tunes how strictly a document is turned into a DeployConfig.
type ConfigOptions struct {
	// StrictCompiler makes conflicting compiler declarations fatal instead of a recorded issue.
	StrictCompiler bool
}

// ConfigService builds the read-only DeployConfig from a parsed document and an environment snapshot.
type ConfigService struct {
	networks port.NetworkDefinitionProvider
	logger   port.Logger
	opts     ConfigOptions

	mu      sync.RWMutex
	current *entity.DeployConfig
}

var _ port.ConfigProvider = (*ConfigService)(nil)

// NewConfigService creates a new ConfigService.
func NewConfigService(networks port.NetworkDefinitionProvider, log port.Logger, opts ConfigOptions) *ConfigService {
	return &ConfigService{networks: networks, logger: log, opts: opts}
}

// Build resolves and validates doc against env. Every problem found is returned,
// joined; each stays matchable with errors.Is / errors.As. On success the result
// also becomes the value served by GetConfig.
func (s *ConfigService) Build(doc *configloader.Document, env port.Environment) (*entity.DeployConfig, error) {
	if doc == nil {
		return nil, errors.New("no config document")
	}
	cfg, err := s.build(doc, env)
	if err != nil {
		metrics.ConfigLoads.WithLabelValues("failed").Inc()
		s.logger.Error("Deploy config is invalid", "source", doc.Source, "error", err)
		return nil, err
	}
	metrics.ConfigLoads.WithLabelValues("ok").Inc()
	for _, is := range cfg.Issues {
		metrics.ConfigIssues.WithLabelValues(string(is.Kind)).Inc()
		s.logger.Warn("Deploy config issue", "kind", is.Kind, "network", is.Network, "message", is.Message)
	}
	s.logger.Info("Deploy config loaded",
		"source", cfg.Source,
		"compiler", cfg.Compiler.Version,
		"optimizer", cfg.Compiler.Optimizer.Enabled,
		"runs", cfg.Compiler.Optimizer.Runs,
		"networks", len(cfg.Networks),
		"issues", len(cfg.Issues),
	)

	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	return cfg, nil
}

// Load reads the document at path, or the built-in one when path is empty, snapshots
// the environment variables it references through lookup and builds it.
func (s *ConfigService) Load(path string, lookup envresolver.LookupFunc) (*entity.DeployConfig, error) {
	var doc *configloader.Document
	if path == "" {
		doc = configloader.Builtin()
	} else {
		var err error
		if doc, err = configloader.Load(path); err != nil {
			metrics.ConfigLoads.WithLabelValues("failed").Inc()
			return nil, err
		}
	}
	env := envresolver.Capture(lookup, doc.EnvReferences()...)
	s.logger.Debug("Environment captured", "source", doc.Source, "vars", env.Keys())
	return s.Build(doc, env)
}

// GetConfig returns the last successfully built config, or nil.
func (s *ConfigService) GetConfig() *entity.DeployConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *ConfigService) build(doc *configloader.Document, env port.Environment) (*entity.DeployConfig, error) {
	var errs []error

	cfg := &entity.DeployConfig{
		Source:         doc.Source,
		Networks:       make(map[string]entity.ResolvedNetwork, len(doc.Networks)),
		DefaultNetwork: doc.DefaultNetwork,
	}

	compiler, issues, err := configloader.ResolveCompiler(doc.Compilers)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Compiler = compiler
	for _, is := range issues {
		if is.Kind == entity.IssueCompilerVersionConflict && s.opts.StrictCompiler {
			errs = append(errs, fmt.Errorf("%w (line %d)", entity.ErrCompilerVersionConflict, is.Line))
			continue
		}
		cfg.Issues = append(cfg.Issues, is)
	}

	for _, key := range doc.UnknownKeys {
		cfg.Issues = append(cfg.Issues, entity.ConfigIssue{
			Kind:    entity.IssueUnknownKey,
			Message: fmt.Sprintf("top-level key %q is not used by this tool", key),
		})
	}

	if len(doc.NetworkOrder) == 0 {
		errs = append(errs, entity.ErrNoNetworks)
	}

	resolver := accountloader.NewAccountResolver(env, s.logger)
	for _, name := range doc.NetworkOrder {
		resolved, netIssues, netErrs := s.resolveNetwork(doc.Networks[name], env, resolver)
		cfg.Issues = append(cfg.Issues, netIssues...)
		if len(netErrs) > 0 {
			for _, e := range netErrs {
				errs = append(errs, &entity.NetworkError{Network: name, Err: e})
			}
			continue
		}
		cfg.Networks[name] = resolved
		cfg.NetworkOrder = append(cfg.NetworkOrder, name)
	}

	if doc.DefaultNetwork != "" {
		if _, ok := doc.Networks[doc.DefaultNetwork]; !ok {
			errs = append(errs, fmt.Errorf("defaultNetwork %q: %w", doc.DefaultNetwork, entity.ErrUnknownNetwork))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func (s *ConfigService) resolveNetwork(n entity.NetworkConfig, env port.Environment, resolver *accountloader.AccountResolver) (entity.ResolvedNetwork, []entity.ConfigIssue, []error) {
	var (
		errs   []error
		issues []entity.ConfigIssue
	)
	out := entity.ResolvedNetwork{Name: n.Name, Timeout: n.Timeout}

	rawURL, err := env.Expand(n.URL)
	if err != nil {
		errs = append(errs, entity.AttachNetwork(err, n.Name))
	} else if err := validation.ValidateURL(rawURL); err != nil {
		errs = append(errs, err)
	} else {
		out.URL = rawURL
		out.DisplayURL = validation.RedactURL(rawURL)
	}

	check, err := validation.ValidateChainID(n.Name, n.ChainID, s.networks)
	if err != nil {
		errs = append(errs, err)
	} else {
		out.ChainID = check.ChainID
		out.ChainIDDeclared = check.Declared
		if check.Inferred {
			issues = append(issues, entity.ConfigIssue{
				Kind:    entity.IssueChainIDInferred,
				Network: n.Name,
				Message: fmt.Sprintf("chainId not declared, using known id %d", check.ChainID),
				Line:    n.Line,
			})
		}
	}

	if err := validation.ValidateAccountStrategy(n.Accounts); err != nil {
		errs = append(errs, err)
	} else {
		accounts, accIssues, err := resolver.Resolve(n.Name, n.Accounts)
		issues = append(issues, accIssues...)
		if err != nil {
			errs = append(errs, err)
		} else if accounts.IsEmpty() {
			errs = append(errs, entity.ErrNoAccountStrategy)
		} else {
			out.Accounts = accounts
		}
	}

	return out, issues, errs
}
