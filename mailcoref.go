package mailcoref

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/siherrmann/mailcoref/core/pipeline"
	"github.com/siherrmann/mailcoref/core/resolver"
	"github.com/siherrmann/mailcoref/database"
	"github.com/siherrmann/mailcoref/helper"
	"github.com/siherrmann/mailcoref/model"
	loadSql "github.com/siherrmann/mailcoref/sql"
)

// MailCoref resolves the people behind a batch of emails.
// It annotates email bodies through its pipeline, resolves senders and
// mentions into person clusters and optionally exports them to postgres.
type MailCoref struct {
	DB       *helper.Database
	Clusters *database.ClustersDBHandler // Optional, set by ConnectDatabase
	Pipeline *pipeline.Pipeline          // Annotation pipeline
	// Logging
	log *slog.Logger

	annotator       *pipeline.NERAnnotator
	resolverOptions []resolver.Option
}

// Option configures a MailCoref
type Option func(*MailCoref)

// WithLogger replaces the default pretty logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *MailCoref) {
		if logger != nil {
			m.log = logger
		}
	}
}

// WithMergeFunc sets the merge stage used by every resolution run
func WithMergeFunc(merge resolver.MergeFunc) Option {
	return func(m *MailCoref) {
		m.resolverOptions = append(m.resolverOptions, resolver.WithMergeFunc(merge))
	}
}

// New creates a MailCoref without pipeline or database
func New(opts ...Option) *MailCoref {
	m := &MailCoref{
		log: helper.NewLogger(os.Stdout, slog.LevelInfo),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewWithDatabase creates a MailCoref and connects the export database
func NewWithDatabase(config *helper.DatabaseConfiguration, opts ...Option) (*MailCoref, error) {
	m := New(opts...)
	if err := m.ConnectDatabase(config); err != nil {
		return nil, err
	}
	return m, nil
}

// ConnectDatabase connects to postgres and prepares the cluster export tables
func (m *MailCoref) ConnectDatabase(config *helper.DatabaseConfiguration) error {
	db, err := helper.ConnectDatabase("mailcoref", config, m.log)
	if err != nil {
		return helper.NewError("connect database", err)
	}

	err = loadSql.Init(db.Instance)
	if err != nil {
		db.Close()
		return helper.NewError("initialize database extensions", err)
	}

	clusters, err := database.NewClustersDBHandler(db, false)
	if err != nil {
		db.Close()
		return helper.NewError("create clusters handler", err)
	}

	m.DB = db
	m.Clusters = clusters
	return nil
}

// Close releases the annotator session and the database connection
func (m *MailCoref) Close() error {
	var err error
	if m.annotator != nil {
		err = m.annotator.Close()
		m.annotator = nil
	}
	if m.DB != nil && m.DB.Instance != nil {
		if dbErr := m.DB.Instance.Close(); dbErr != nil && err == nil {
			err = dbErr
		}
	}
	return err
}

// SetPipeline sets the annotation pipeline
func (m *MailCoref) SetPipeline(p *pipeline.Pipeline) {
	if p != nil {
		p.SetLogger(m.log)
	}
	m.Pipeline = p
}

// UseDefaultPipeline sets up the NER annotator with DefaultAnnotatorConfig
func (m *MailCoref) UseDefaultPipeline() error {
	return m.UseNERPipeline(model.DefaultAnnotatorConfig())
}

// UseNERPipeline sets up a NER annotator pipeline with the given configuration
func (m *MailCoref) UseNERPipeline(config model.AnnotatorConfig) error {
	annotator, err := pipeline.NewNERAnnotator(config)
	if err != nil {
		return helper.NewError("create ner annotator", err)
	}

	if m.annotator != nil {
		if err := m.annotator.Close(); err != nil {
			m.log.Warn("Closing previous annotator failed", slog.String("error", err.Error()))
		}
	}
	m.annotator = annotator

	p := pipeline.NewPipeline(annotator.Annotate)
	p.SetConcurrency(config.Concurrency)
	m.SetPipeline(p)
	return nil
}

// ResolveEmails annotates the emails and resolves them into person clusters.
// Annotation errors are returned before any resolution happens.
func (m *MailCoref) ResolveEmails(ctx context.Context, emails []*model.EmailMessage) ([]*model.PersonCluster, error) {
	if m.Pipeline == nil {
		return nil, helper.NewError("resolve emails", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}

	annotated, err := m.Pipeline.Process(ctx, emails)
	if err != nil {
		return nil, helper.NewError("annotate emails", err)
	}

	return m.ResolveAnnotated(annotated), nil
}

// ResolveAnnotated resolves already annotated emails with a fresh resolver
func (m *MailCoref) ResolveAnnotated(emails []*model.EmailWithMentions) []*model.PersonCluster {
	opts := append([]resolver.Option{resolver.WithLogger(m.log)}, m.resolverOptions...)
	return resolver.ResolveBatch(emails, opts...)
}

// StoreClusters exports the clusters of one run and returns the new run id
func (m *MailCoref) StoreClusters(ctx context.Context, clusters []*model.PersonCluster) (uuid.UUID, error) {
	if m.Clusters == nil {
		return uuid.Nil, helper.NewError("store clusters", fmt.Errorf("database not connected, use ConnectDatabase() first"))
	}

	runID := uuid.New()
	if _, err := m.Clusters.InsertRun(ctx, runID, clusters); err != nil {
		return uuid.Nil, helper.NewError("insert run", err)
	}
	return runID, nil
}

// LoadRun reads an exported run back
func (m *MailCoref) LoadRun(ctx context.Context, runID uuid.UUID) ([]*model.ClusterRecord, error) {
	if m.Clusters == nil {
		return nil, helper.NewError("load run", fmt.Errorf("database not connected, use ConnectDatabase() first"))
	}
	return m.Clusters.SelectClustersByRun(ctx, runID)
}
