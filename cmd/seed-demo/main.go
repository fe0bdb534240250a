// Command seed-demo provisions demo accounts for every barangay role so the
// assignment chain and the approval workflow can be exercised end to end on a
// fresh database. Existing usernames are left untouched.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	"barangaylink/config"
	"barangaylink/schema"
	"barangaylink/utils"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

type demoAccount struct {
	username string
	fullName string
	email    string
	role     string
}

var demoAccounts = []demoAccount{
	{"brgy.secretary", "Liza Ramos", "secretary@barangay.gov.ph", "secretary"},
	{"brgy.chairman", "Antonio Bautista", "chairman@barangay.gov.ph", "chairman"},
	{"tanod.head", "Pedro Santos", "tanod@barangay.gov.ph", "tanod_head"},
	{"kagawad.peace", "Maria Cruz", "peace@barangay.gov.ph", "kagawad_peace"},
	{"kagawad.infra", "Ramon Aquino", "infra@barangay.gov.ph", "kagawad_infra"},
	{"kagawad.health", "Jose Reyes", "health@barangay.gov.ph", "kagawad_health"},
	{"kagawad.social", "Nida Flores", "social@barangay.gov.ph", "kagawad_social"},
	{"kagawad.sanitation", "Berto Ocampo", "sanitation@barangay.gov.ph", "kagawad_sanitation"},
	{"kagawad.environment", "Fe Salazar", "environment@barangay.gov.ph", "kagawad_environment"},
	{"lupon.chair", "Ana Garcia", "lupon@barangay.gov.ph", "lupon_chair"},
	{"bhw.main", "Rosa Mendoza", "bhw@barangay.gov.ph", "bhw"},
	{"sk.chair", "Juan Dela Cruz Jr.", "sk@barangay.gov.ph", "sk_chair"},
	{"vaw.officer", "Carmen Lopez", "vaw@barangay.gov.ph", "vaw_officer"},
	{"animal.control", "Rico Magno", "animals@barangay.gov.ph", "animal_control"},
	{"bdrrmc.focal", "Elena Torres", "disaster@barangay.gov.ph", "bdrrmc_focal"},
	{"badac.focal", "Roberto Villanueva", "badac@barangay.gov.ph", "badac_focal"},
	{"resident.juan", "Juan Dela Cruz", "juan@example.com", "resident"},
}

func main() {
	password := flag.String("password", "demo1234", "password for every seeded account")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}
	cfg := config.LoadConfig()

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.Database.User, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("Failed to open database connection: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	schema.InitializeDatabase(db)
	schema.SeedCategories(db)

	hash, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	created := 0
	for _, acc := range demoAccounts {
		var exists int
		if err := db.QueryRow(`SELECT COUNT(*) FROM users WHERE username = ?`, acc.username).Scan(&exists); err != nil {
			log.Fatalf("Failed to check user %q: %v", acc.username, err)
		}
		if exists > 0 {
			log.Printf("user %q already exists, skipping", acc.username)
			continue
		}
		_, err := db.Exec(`INSERT INTO users (username, full_name, email, role, password_hash, is_active, is_approved)
			VALUES (?, ?, ?, ?, ?, TRUE, TRUE)`,
			acc.username, acc.fullName, acc.email, acc.role, hash)
		if err != nil {
			log.Fatalf("Failed to create user %q: %v", acc.username, err)
		}
		log.Printf("created %s (%s)", acc.username, acc.role)
		created++
	}
	log.Printf("Done: %d account(s) created", created)
}
