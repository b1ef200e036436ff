// File: cmd/diagnostic/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/iyunix/go-linksports/internal/config"
	"github.com/iyunix/go-linksports/internal/database"
	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/services/mail"
	"github.com/iyunix/go-linksports/internal/services/sms"
)

// Checks the database and the code gateways with the server's configuration.
// With -email or -phone a test code is sent through the real gateway.
func main() {
	email := flag.String("email", "", "send a test code to this address")
	phone := flag.String("phone", "", "send a test code to this number")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fmt.Println("Running linksports diagnostics...")

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("❌ Config: %v", err)
	}
	fmt.Printf("✅ Config loaded (env=%s, db=%s, tz=%s)\n", cfg.Environment, cfg.DBDriver, cfg.AppTimezone)

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL, true)
	if err != nil {
		log.Fatalf("❌ Database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("❌ Database: %v", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Fatalf("❌ Database ping: %v", err)
	}
	var users int64
	if err := db.WithContext(ctx).Model(&domain.User{}).Count(&users).Error; err != nil {
		fmt.Printf("⚠️  Database reachable but users table unreadable: %v\n", err)
	} else {
		fmt.Printf("✅ Database reachable (%d users)\n", users)
	}

	mailCfg := mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}
	if !mailCfg.Configured() {
		fmt.Println("⚠️  SMTP not configured; email codes will only be logged")
	} else {
		fmt.Printf("✅ SMTP configured (%s:%d)\n", mailCfg.Host, mailCfg.Port)
		if *email != "" {
			if err := mail.NewSMTPSender(mailCfg).SendVerificationCode(ctx, *email, "000000"); err != nil {
				log.Fatalf("❌ Test email failed: %v", err)
			}
			fmt.Printf("✅ Test code mailed to %s\n", domain.MaskPII(*email))
		}
	}

	smsCfg := &sms.Config{
		AccessKey:  cfg.SMS.AccessKey,
		TemplateID: cfg.SMS.TemplateID,
		APIURL:     cfg.SMS.APIURL,
	}
	if !smsCfg.Configured() {
		fmt.Println("⚠️  SMS gateway not configured; phone codes will only be logged")
		return
	}
	provider := sms.NewSMSIRProvider(smsCfg)
	if err := provider.HealthCheck(ctx); err != nil {
		log.Fatalf("❌ SMS gateway configuration: %v", err)
	}
	fmt.Println("✅ SMS gateway configured")
	if *phone != "" {
		to := domain.NormalizePhone(*phone)
		if err := provider.SendVerificationCode(ctx, to, "000000"); err != nil {
			log.Fatalf("❌ Test SMS failed: %v", err)
		}
		fmt.Printf("✅ Test code sent to %s\n", domain.MaskPII(to))
	}
}
