package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/siherrmann/mailcoref"
	"github.com/siherrmann/mailcoref/helper"
	"github.com/siherrmann/mailcoref/model"
)

var thread = []*model.EmailMessage{
	{
		MessageID: "m1",
		ThreadID:  "thread-1",
		FromName:  "Antonio Ache",
		FromEmail: "antonio@example.com",
		Subject:   "Draft review",
		Body:      "Hi John,\n\nI reviewed the draft with Tony yesterday. Antonio added a few comments for you.\n\nBest,\nAntonio",
	},
	{
		MessageID: "m2",
		ThreadID:  "thread-1",
		FromName:  "John Smith",
		FromEmail: "jsmith@corp.com",
		Subject:   "Re: Draft review",
		Body:      "Thanks Antonio. Tony, could you send the final version to Maria Lopez?\n\nJohn",
	},
	{
		MessageID: "m3",
		ThreadID:  "thread-1",
		FromName:  "Tony",
		FromEmail: "tony@example.com",
		Subject:   "Re: Re: Draft review",
		Body:      "Sure John. Maria will have it by Friday.",
	},
}

func main() {
	// Start a test PostgreSQL container for the export
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	m, err := mailcoref.NewWithDatabase(dbConfig)
	if err != nil {
		log.Fatalf("Failed to create mailcoref: %v", err)
	}
	defer m.Close()

	// Set up the default pipeline (NER person mentions)
	if err := m.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	ctx := context.Background()

	fmt.Printf("Resolving %d emails...\n", len(thread))
	clusters, err := m.ResolveEmails(ctx, thread)
	if err != nil {
		log.Fatalf("Failed to resolve emails: %v", err)
	}
	fmt.Println(renderClusters(clusters))

	runID, err := m.StoreClusters(ctx, clusters)
	if err != nil {
		log.Fatalf("Failed to store clusters: %v", err)
	}

	records, err := m.LoadRun(ctx, runID)
	if err != nil {
		log.Fatalf("Failed to load run: %v", err)
	}
	fmt.Printf("\nExported run %s with %d clusters\n", runID, len(records))
	for _, record := range records {
		fmt.Printf("  %s %q: %d mentions, metadata %v\n", record.ClusterID, record.CanonicalName, len(record.Mentions), record.Metadata)
	}
}

func renderClusters(clusters []*model.PersonCluster) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Cluster", "Canonical name", "Addresses", "Names", "Mentions"})

	for _, cluster := range clusters {
		mentions := make([]string, 0, len(cluster.Mentions()))
		for _, mention := range cluster.Mentions() {
			mentions = append(mentions, fmt.Sprintf("%s@%s[%d:%d-%d]",
				mention.Text, mention.EmailID, mention.SentenceIndex, mention.StartToken, mention.EndToken))
		}

		tw.AppendRow(table.Row{
			cluster.ID(),
			cluster.CanonicalName(),
			strings.Join(cluster.EmailAddresses(), "\n"),
			strings.Join(cluster.Names(), "\n"),
			strings.Join(mentions, "\n"),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}
