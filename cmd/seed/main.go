package main

import (
	"context"
	"fmt"
	"os"
	"time"

	common_models "go-hse/internal/common/models"
	"go-hse/internal/config"
	"go-hse/internal/database"
	"go-hse/internal/logger"
	"go-hse/pkg/utils"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var (
	demoCompanyID = "demo-company"
	printTokens   = true
)

type demoUser struct {
	UserID string
	Email  string
	Role   string
}

var demoUsers = []demoUser{
	{UserID: "user-alice", Email: "alice@demo.test", Role: utils.RoleEmployee},
	{UserID: "user-bob", Email: "bob@demo.test", Role: utils.RoleManager},
	{UserID: "user-carol", Email: "carol@demo.test", Role: utils.RoleCompanyAdmin},
}

func employees(now time.Time) []common_models.Employee {
	return []common_models.Employee{
		{ID: "emp-alice", CompanyID: demoCompanyID, UserID: "user-alice", FullName: "Alice Smith", Email: "alice@demo.test", Position: "Safety Officer", CreatedAt: now},
		{ID: "emp-bob", CompanyID: demoCompanyID, UserID: "user-bob", FullName: "Bob Jones", Email: "bob@demo.test", Position: "Site Manager", CreatedAt: now},
	}
}

func teamMembers(now time.Time) []common_models.TeamMember {
	return []common_models.TeamMember{
		{ID: "tm-carol", CompanyID: demoCompanyID, UserID: "user-carol", FirstName: "Carol", LastName: "White", Email: "carol@demo.test", Role: "admin", CreatedAt: now},
	}
}

func tasks(now time.Time) []common_models.Task {
	due := func(days int) *time.Time {
		t := now.AddDate(0, 0, days)
		return &t
	}
	return []common_models.Task{
		{ID: "task-1", CompanyID: demoCompanyID, Title: "Inspect scaffolding with @Alice Smith", Status: common_models.TaskStatusPending, Priority: "high", CreatedBy: "user-bob", DueDate: due(2), CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "task-2", CompanyID: demoCompanyID, Title: "Update fire evacuation plan", Status: common_models.TaskStatusPending, Priority: "medium", AssignedTo: "emp-bob", CreatedBy: "user-carol", DueDate: due(7), CreatedAt: now.Add(-time.Hour)},
		{ID: "task-3", CompanyID: demoCompanyID, Title: "Review incident report", Description: "@Bob Jones please sign off", Status: common_models.TaskStatusInProgress, Priority: "medium", AssignedTo: "emp-alice", CreatedBy: "user-carol", CreatedAt: now.Add(-30 * time.Minute)},
		{ID: "task-4", CompanyID: demoCompanyID, Title: "Order new PPE", Status: common_models.TaskStatusCompleted, Priority: "low", CreatedBy: "user-alice", CreatedAt: now.Add(-48 * time.Hour)},
	}
}

// upsertAll replaces every document by _id so the seed can be re-run.
func upsertAll[T any](ctx context.Context, coll *mongo.Collection, docs []T, id func(T) string) error {
	for _, doc := range docs {
		_, err := coll.ReplaceOne(ctx, bson.M{"_id": id(doc)}, doc, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("%s: %w", coll.Name(), err)
		}
	}
	return nil
}

// Seed writes a demo company with a small directory and a few tasks, then prints a
// token per demo user.
func Seed(lc fx.Lifecycle, mongodb *database.MongodbDB, cfg *config.Config, logger *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				now := time.Now().UTC()

				logger.Info("Starting database seeding", zap.String("company_id", demoCompanyID))

				_, err := mongodb.DB.Collection("companies").ReplaceOne(ctx,
					bson.M{"_id": demoCompanyID},
					bson.M{"_id": demoCompanyID, "name": "Demo Construction Ltd", "email": "office@demo.test", "subscription_tier": "basic", "subscription_status": "trial"},
					options.Replace().SetUpsert(true))
				if err != nil {
					logger.Error("Failed to seed company", zap.Error(err))
					return
				}
				if err := upsertAll(ctx, mongodb.DB.Collection("employees"), employees(now), func(e common_models.Employee) string { return e.ID }); err != nil {
					logger.Error("Failed to seed employees", zap.Error(err))
					return
				}
				if err := upsertAll(ctx, mongodb.DB.Collection("team_members"), teamMembers(now), func(m common_models.TeamMember) string { return m.ID }); err != nil {
					logger.Error("Failed to seed team members", zap.Error(err))
					return
				}
				if err := upsertAll(ctx, mongodb.DB.Collection("tasks"), tasks(now), func(t common_models.Task) string { return t.ID }); err != nil {
					logger.Error("Failed to seed tasks", zap.Error(err))
					return
				}

				if !printTokens {
					logger.Info("Database seeding completed")
					return
				}
				utils.SetSecret(cfg.JWTSecret)
				for _, u := range demoUsers {
					token, err := utils.GenerateToken(u.UserID, u.Email, demoCompanyID, u.Role)
					if err != nil {
						logger.Error("Failed to generate token", zap.String("user_id", u.UserID), zap.Error(err))
						continue
					}
					logger.Info("Demo user", zap.String("email", u.Email), zap.String("role", u.Role), zap.String("token", token))
				}
				logger.Info("Database seeding completed")
			}()
			return nil
		},
	})
}

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a demo company with employees, team members and tasks",
	Run: func(cmd *cobra.Command, args []string) {
		fx.New(
			fx.Provide(
				config.LoadConfig,
				database.NewDatabase,
				logger.NewLogger,
			),
			fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
				return &fxevent.ZapLogger{Logger: log}
			}),
			fx.Invoke(Seed),
		).Run()
	},
}

func main() {
	rootCmd.Flags().StringVar(&demoCompanyID, "company", demoCompanyID, "company id to seed")
	rootCmd.Flags().BoolVar(&printTokens, "tokens", printTokens, "log a JWT for every demo user")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
