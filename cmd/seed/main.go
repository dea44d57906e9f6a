package main

import (
	"context"
	"log"

	"wabackend/internal/config"
	"wabackend/internal/database"
	"wabackend/internal/repository"
	"wabackend/internal/service"
)

// Seeds reference data in dependency order: the privilege matrix aborts the
// run on failure, course content logs and continues, the rest is idempotent.
func main() {
	cfg := config.Load()

	db, err := database.NewConnection(cfg.DSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	ctx := context.Background()
	txManager := repository.NewTransactionManager(db)
	privilegeRepo := repository.NewPrivilegeRepository(db)
	userRepo := repository.NewUserRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	privilegeService := service.NewPrivilegeService(privilegeRepo, txManager)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo, auditRepo, txManager, cfg)
	courseService := service.NewCourseService(courseRepo)

	result, err := privilegeService.SeedMatrix(ctx)
	if err != nil {
		log.Fatalf("Privilege matrix seed failed: %v", err)
	}
	log.Printf("Privilege matrix seeded: %d privileges x %d modules = %d roles",
		result.Privileges, result.Modules, result.Roles)

	if err := subscriptionService.SeedDefaultPlans(ctx); err != nil {
		log.Fatalf("Subscription plan seed failed: %v", err)
	}
	log.Println("Subscription plans seeded.")

	if err := courseService.SeedCourseContent(ctx); err != nil {
		log.Printf("Course content seed finished with errors: %v", err)
	} else {
		log.Println("Course content seeded.")
	}

	if err := subscriptionService.EnsureSuperAdmin(ctx); err != nil {
		log.Fatalf("Super admin bootstrap failed: %v", err)
	}
	log.Println("Seed complete.")
}
