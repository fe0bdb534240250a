package schema

import (
	"database/sql"
	"log"
)

type categorySeed struct {
	name        string
	description string
	primaryRole string
	backupRole  string
	sensitive   bool
	referral    bool
	notes       string
}

var defaultCategories = []categorySeed{
	{
		name:        "Peace & Order",
		description: "Noise complaints, disturbances, minor disputes, public order issues",
		primaryRole: "tanod_head",
		backupRole:  "kagawad_peace",
		notes:       "For criminal matters, escalate to PNP. For disputes, route to Lupon Tagapamayapa.",
	},
	{
		name:        "Civil Disputes",
		description: "Boundary disputes, neighbor conflicts, property issues, mediation requests",
		primaryRole: "lupon_chair",
		backupRole:  "lupon_member",
		notes:       "Handle per Katarungang Pambarangay (RA 7160). Escalate to courts if non-compoundable.",
	},
	{
		name:        "Sanitation & Garbage",
		description: "Garbage collection, illegal dumping, unsanitary conditions, pest control",
		primaryRole: "kagawad_sanitation",
		backupRole:  "kagawad_environment",
		notes:       "Coordinate with City Environment Office (CENRO/MENRO) for major violations.",
	},
	{
		name:        "Infrastructure & Public Works",
		description: "Road repairs, drainage, streetlights, sidewalks, public facilities",
		primaryRole: "kagawad_infra",
		backupRole:  "secretary",
		notes:       "Major repairs: City Engineering/DPWH. Streetlights: Electric utility (MERALCO).",
	},
	{
		name:        "Health Services",
		description: "Clinic services, health programs, sanitation complaints, public health concerns",
		primaryRole: "bhw",
		backupRole:  "kagawad_health",
		notes:       "Escalate to RHU/City Health Office. Emergencies: EMS/PNP/Fire.",
	},
	{
		name:        "Social Services",
		description: "Aid programs, assistance for vulnerable residents, social welfare concerns",
		primaryRole: "kagawad_social",
		backupRole:  "secretary",
		notes:       "Coordinate with MSWDO/CSWDO for assistance programs.",
	},
	{
		name:        "Disaster & Emergency",
		description: "Flooding, fallen trees, emergency preparedness, calamity response",
		primaryRole: "bdrrmc_focal",
		backupRole:  "chairman",
		notes:       "Major disasters: MDRRMO/CDRRMO, DPWH, Fire Department.",
	},
	{
		name:        "Youth & Sports",
		description: "Youth programs, sports facilities, SK events, peer disputes (non-criminal)",
		primaryRole: "sk_chair",
		backupRole:  "kagawad_social",
		notes:       "School-related: guidance counselor. Serious issues: escalate to Chairman.",
	},
	{
		name:        "Business & Permits",
		description: "Unlicensed businesses, permit violations, commercial noise, compliance issues",
		primaryRole: "secretary",
		backupRole:  "kagawad_peace",
		notes:       "Major violations: BPLO/City Licensing Office.",
	},
	{
		name:        "Stray Animals",
		description: "Stray dogs/cats, animal control, rabies concerns, animal-related complaints",
		primaryRole: "animal_control",
		backupRole:  "kagawad_environment",
		notes:       "Rabies cases: City Veterinarian/CVO immediately.",
	},
	{
		name:        "VAWC & Child Protection",
		description: "Violence Against Women and Children, abuse reports, protection requests",
		primaryRole: "vaw_officer",
		backupRole:  "chairman",
		sensitive:   true,
		referral:    true,
		notes:       "Follow RA 9262/RA 7610. Escalate: PNP-WCPD, MSWDO. Maintain confidentiality.",
	},
	{
		name:        "Drug-Related Issues",
		description: "Suspected drug activities, substance abuse concerns, rehabilitation requests",
		primaryRole: "badac_focal",
		backupRole:  "chairman",
		sensitive:   true,
		referral:    true,
		notes:       "Coordinate with PNP/PDEA as needed. Handle with discretion.",
	},
}

// SeedCategories inserts the default categories and their assignment rules.
// Idempotent; a category that already exists is skipped along with its rule.
func SeedCategories(db *sql.DB) {
	for _, seed := range defaultCategories {
		var categoryID int64
		err := db.QueryRow(`SELECT category_id FROM categories WHERE name = ?`, seed.name).Scan(&categoryID)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			log.Fatalf("[SCHEMA] Failed to check category %q: %v", seed.name, err)
		}

		result, err := db.Exec(`INSERT INTO categories (name, description, is_active) VALUES (?, ?, TRUE)`,
			seed.name, seed.description)
		if err != nil {
			log.Fatalf("[SCHEMA] Failed to seed category %q: %v", seed.name, err)
		}
		categoryID, err = result.LastInsertId()
		if err != nil {
			log.Fatalf("[SCHEMA] Failed to get category ID for %q: %v", seed.name, err)
		}

		var backup interface{}
		if seed.backupRole != "" {
			backup = seed.backupRole
		}
		_, err = db.Exec(`INSERT INTO assignment_rules
				(category_id, primary_role, backup_role, is_sensitive, requires_referral, escalation_notes)
			VALUES (?, ?, ?, ?, ?, ?)`,
			categoryID, seed.primaryRole, backup, seed.sensitive, seed.referral, seed.notes)
		if err != nil {
			log.Fatalf("[SCHEMA] Failed to seed assignment rule for %q: %v", seed.name, err)
		}
		log.Printf("[SCHEMA] seeded category %q -> %s", seed.name, seed.primaryRole)
	}
}
