package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/siherrmann/mailcoref/helper"
	"github.com/siherrmann/mailcoref/model"
	loadSql "github.com/siherrmann/mailcoref/sql"
)

// ClustersDBHandlerFunctions defines the interface for person cluster export operations.
type ClustersDBHandlerFunctions interface {
	InsertRun(ctx context.Context, runID uuid.UUID, clusters []*model.PersonCluster) ([]*model.ClusterRecord, error)
	InsertClusterRecord(ctx context.Context, record *model.ClusterRecord) error
	SelectClustersByRun(ctx context.Context, runID uuid.UUID) ([]*model.ClusterRecord, error)
	SelectClustersByEmail(ctx context.Context, address string) ([]*model.ClusterRecord, error)
	SelectClustersBySearch(ctx context.Context, searchTerm string, limit int) ([]*model.ClusterRecord, error)
	DeleteRun(ctx context.Context, runID uuid.UUID) (int64, error)
}

// ClustersDBHandler exports resolved person clusters to postgres.
// Exports are write-only for resolution: nothing here is fed back into a resolver.
type ClustersDBHandler struct {
	db *helper.Database
}

// NewClustersDBHandler creates a new person clusters database handler.
// It loads the cluster SQL functions (always if force is true) and creates the tables.
func NewClustersDBHandler(db *helper.Database, force bool) (*ClustersDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	clustersDbHandler := &ClustersDBHandler{
		db: db,
	}

	err := loadSql.LoadClustersSql(clustersDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load clusters sql", err)
	}

	err = clustersDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ClustersDBHandler")

	return clustersDbHandler, nil
}

// CreateTable creates the person_clusters and person_mentions tables if they don't exist
func (h *ClustersDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_person_clusters();`)
	if err != nil {
		return helper.NewError("init person clusters", err)
	}

	h.db.Logger.Info("Checked/created tables person_clusters and person_mentions")

	return nil
}

// InsertRun exports all clusters of one resolution run in a single transaction
func (h *ClustersDBHandler) InsertRun(ctx context.Context, runID uuid.UUID, clusters []*model.PersonCluster) ([]*model.ClusterRecord, error) {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return nil, helper.NewError("begin transaction", err)
	}
	defer tx.Rollback()

	records := make([]*model.ClusterRecord, 0, len(clusters))
	for _, cluster := range clusters {
		record := model.NewClusterRecord(runID, cluster)
		if err := insertClusterRecord(ctx, tx, record); err != nil {
			return nil, helper.NewError(fmt.Sprintf("insert cluster %s", cluster.ID()), err)
		}
		records = append(records, record)
	}

	if err := tx.Commit(); err != nil {
		return nil, helper.NewError("commit transaction", err)
	}

	h.db.Logger.Info("Exported person clusters",
		slog.String("run_id", runID.String()),
		slog.Int("clusters", len(records)),
	)

	return records, nil
}

// InsertClusterRecord inserts a single record with its mentions
func (h *ClustersDBHandler) InsertClusterRecord(ctx context.Context, record *model.ClusterRecord) error {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer tx.Rollback()

	if err := insertClusterRecord(ctx, tx, record); err != nil {
		return helper.NewError("insert cluster record", err)
	}

	if err := tx.Commit(); err != nil {
		return helper.NewError("commit transaction", err)
	}
	return nil
}

func insertClusterRecord(ctx context.Context, tx *sql.Tx, record *model.ClusterRecord) error {
	if record.RID == uuid.Nil {
		record.RID = uuid.New()
	}

	row := tx.QueryRowContext(ctx,
		`SELECT * FROM insert_person_cluster($1, $2, $3, $4, $5, $6, $7)`,
		record.RID,
		record.RunID,
		record.ClusterID,
		record.CanonicalName,
		pq.Array(record.EmailAddresses),
		pq.Array(record.Names),
		record.Metadata,
	)
	if err := row.Scan(&record.ID, &record.CreatedAt); err != nil {
		return helper.NewError("scan", err)
	}

	for i, mention := range record.Mentions {
		_, err := tx.ExecContext(ctx,
			`SELECT insert_person_mention($1, $2, $3, $4, $5, $6, $7, $8)`,
			record.ID,
			i,
			mention.EmailID,
			mention.LocalClusterID,
			mention.Text,
			mention.SentenceIndex,
			mention.StartToken,
			mention.EndToken,
		)
		if err != nil {
			return helper.NewError(fmt.Sprintf("insert mention %d", i), err)
		}
	}

	return nil
}

// SelectClustersByRun returns the clusters of one run in export order, with mentions
func (h *ClustersDBHandler) SelectClustersByRun(ctx context.Context, runID uuid.UUID) ([]*model.ClusterRecord, error) {
	return h.selectClusters(ctx, `SELECT * FROM select_person_clusters_by_run($1)`, runID)
}

// SelectClustersByEmail returns every exported cluster holding the address, newest first
func (h *ClustersDBHandler) SelectClustersByEmail(ctx context.Context, address string) ([]*model.ClusterRecord, error) {
	return h.selectClusters(ctx, `SELECT * FROM select_person_clusters_by_email($1)`, address)
}

// SelectClustersBySearch searches exported clusters by canonical name
func (h *ClustersDBHandler) SelectClustersBySearch(ctx context.Context, searchTerm string, limit int) ([]*model.ClusterRecord, error) {
	return h.selectClusters(ctx, `SELECT * FROM search_person_clusters($1, $2)`, searchTerm, limit)
}

// DeleteRun deletes all clusters (and their mentions) of one run and returns how many were deleted
func (h *ClustersDBHandler) DeleteRun(ctx context.Context, runID uuid.UUID) (int64, error) {
	var deleted int64
	err := h.db.Instance.QueryRowContext(ctx, `SELECT delete_person_clusters_by_run($1)`, runID).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return deleted, nil
}

func (h *ClustersDBHandler) selectClusters(ctx context.Context, query string, args ...interface{}) ([]*model.ClusterRecord, error) {
	rows, err := h.db.Instance.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var records []*model.ClusterRecord
	for rows.Next() {
		record := &model.ClusterRecord{}
		err := rows.Scan(
			&record.ID,
			&record.RID,
			&record.RunID,
			&record.ClusterID,
			&record.CanonicalName,
			pq.Array(&record.EmailAddresses),
			pq.Array(&record.Names),
			&record.Metadata,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		records = append(records, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	for _, record := range records {
		record.Mentions, err = h.selectMentions(ctx, record.ID)
		if err != nil {
			return nil, err
		}
	}

	return records, nil
}

func (h *ClustersDBHandler) selectMentions(ctx context.Context, clusterRowID int64) ([]model.Mention, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_person_mentions($1)`, clusterRowID)
	if err != nil {
		return nil, helper.NewError("query mentions", err)
	}
	defer rows.Close()

	mentions := []model.Mention{}
	for rows.Next() {
		var m model.Mention
		err := rows.Scan(
			&m.EmailID,
			&m.LocalClusterID,
			&m.Text,
			&m.SentenceIndex,
			&m.StartToken,
			&m.EndToken,
		)
		if err != nil {
			return nil, helper.NewError("scan mention", err)
		}
		mentions = append(mentions, m)
	}

	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return mentions, nil
}
