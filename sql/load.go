package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed clusters.sql
var clustersSQL string

// ClustersFunctions lists the functions clusters.sql must create
var ClustersFunctions = []string{
	"init_person_clusters",
	"insert_person_cluster",
	"insert_person_mention",
	"select_person_clusters_by_run",
	"select_person_clusters_by_email",
	"search_person_clusters",
	"select_person_mentions",
	"delete_person_clusters_by_run",
}

// Init initializes the database extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadClustersSql loads the person cluster SQL functions.
// Without force nothing is executed if all functions already exist.
func LoadClustersSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, ClustersFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing clusters functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(clustersSQL)
	if err != nil {
		return fmt.Errorf("error executing clusters SQL: %w", err)
	}

	exist, err := checkFunctions(db, ClustersFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL clusters functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	return LoadClustersSql(db, force)
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
