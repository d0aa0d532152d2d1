package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/department"
	"github.com/frahmantamala/factoryshift/internal/division"
	"github.com/frahmantamala/factoryshift/internal/shift"
	"github.com/frahmantamala/factoryshift/internal/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpg.New(gormpg.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if err := runSeed(db); err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
	},
}

func strPtr(s string) *string { return &s }

func runSeed(db *gorm.DB) error {
	if clearData {
		for _, table := range []string{"notifications", "audit_logs", "system_settings", "users", "departments", "divisions", "shifts"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		fmt.Println("Cleared existing data")
	}

	shifts := []shift.Shift{
		{Name: "Morning", StartTime: "08:00", EndTime: "16:00", Description: strPtr("Morning shift (8AM - 4PM)")},
		{Name: "Afternoon", StartTime: "16:00", EndTime: "00:00", Description: strPtr("Afternoon shift (4PM - 12AM)")},
		{Name: "Night", StartTime: "00:00", EndTime: "08:00", Description: strPtr("Night shift (12AM - 8AM)")},
	}
	for i := range shifts {
		if err := firstOrCreate(db, &shifts[i], "name = ?", shifts[i].Name); err != nil {
			return fmt.Errorf("failed to seed shift %s: %w", shifts[i].Name, err)
		}
	}
	fmt.Println("Seeded shifts")

	divisions := []division.Division{
		{Name: "Production", Description: strPtr("Production Division"), Color: "blue"},
		{Name: "Quality Assurance", Description: strPtr("Quality Division"), Color: "green"},
		{Name: "Maintenance", Description: strPtr("Maintenance Division"), Color: "orange"},
		{Name: "Logistics", Description: strPtr("Logistics Division"), Color: "purple"},
	}
	divisionByName := make(map[string]*division.Division)
	for i := range divisions {
		if err := firstOrCreate(db, &divisions[i], "name = ?", divisions[i].Name); err != nil {
			return fmt.Errorf("failed to seed division %s: %w", divisions[i].Name, err)
		}
		divisionByName[divisions[i].Name] = &divisions[i]
	}
	fmt.Println("Seeded divisions")

	departments := []department.Department{
		{Name: "Production Line A", Code: "PROD_A", DivisionID: divisionByName["Production"].ID},
		{Name: "Production Line B", Code: "PROD_B", DivisionID: divisionByName["Production"].ID},
		{Name: "Production Line C", Code: "PROD_C", DivisionID: divisionByName["Production"].ID},
		{Name: "Assembly", Code: "ASSEMBLY", DivisionID: divisionByName["Production"].ID},
		{Name: "QC Incoming", Code: "QC_IN", DivisionID: divisionByName["Quality Assurance"].ID},
		{Name: "QC Production", Code: "QC_PROD", DivisionID: divisionByName["Quality Assurance"].ID},
		{Name: "QC Final", Code: "QC_FINAL", DivisionID: divisionByName["Quality Assurance"].ID},
		{Name: "Mechanical", Code: "MECH", DivisionID: divisionByName["Maintenance"].ID},
		{Name: "Electrical", Code: "ELEC", DivisionID: divisionByName["Maintenance"].ID},
		{Name: "Preventive", Code: "PREV", DivisionID: divisionByName["Maintenance"].ID},
		{Name: "Warehouse", Code: "WARE", DivisionID: divisionByName["Logistics"].ID},
		{Name: "Shipping", Code: "SHIP", DivisionID: divisionByName["Logistics"].ID},
		{Name: "Receiving", Code: "RECV", DivisionID: divisionByName["Logistics"].ID},
	}
	departmentByCode := make(map[string]*department.Department)
	for i := range departments {
		if err := firstOrCreate(db, &departments[i], "code = ?", departments[i].Code); err != nil {
			return fmt.Errorf("failed to seed department %s: %w", departments[i].Code, err)
		}
		departmentByCode[departments[i].Code] = &departments[i]
	}
	fmt.Println("Seeded departments")

	adminHash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash sample password: %w", err)
	}

	users := []user.User{
		{
			Email: "admin@factory.com", Username: "admin", FullName: "Admin User",
			PasswordHash: string(adminHash), EmployeeID: strPtr("ADMIN001"),
			Role: authz.RoleAdmin, IsActive: true,
		},
		{
			Email: "prod_manager@factory.com", Username: "prod_manager", FullName: "Production Manager",
			PasswordHash: string(hash), EmployeeID: strPtr("DIV001"),
			Role: authz.RoleDivisionManager, DivisionID: &divisionByName["Production"].ID, IsActive: true,
		},
		{
			Email: "quality_manager@factory.com", Username: "quality_manager", FullName: "Quality Manager",
			PasswordHash: string(hash), EmployeeID: strPtr("DIV002"),
			Role: authz.RoleDivisionManager, DivisionID: &divisionByName["Quality Assurance"].ID, IsActive: true,
		},
		{
			Email: "maintenance_manager@factory.com", Username: "maintenance_manager", FullName: "Maintenance Manager",
			PasswordHash: string(hash), EmployeeID: strPtr("DIV003"),
			Role: authz.RoleDivisionManager, DivisionID: &divisionByName["Maintenance"].ID, IsActive: true,
		},
		{
			Email: "logistics_manager@factory.com", Username: "logistics_manager", FullName: "Logistics Manager",
			PasswordHash: string(hash), EmployeeID: strPtr("DIV004"),
			Role: authz.RoleDivisionManager, DivisionID: &divisionByName["Logistics"].ID, IsActive: true,
		},
		{
			Email: "dept_manager_a@factory.com", Username: "dept_manager_a", FullName: "John Smith",
			PasswordHash: string(hash), EmployeeID: strPtr("DEPT001"),
			Role: authz.RoleDepartmentManager, DivisionID: &divisionByName["Production"].ID,
			DepartmentID: &departmentByCode["PROD_A"].ID, IsActive: true,
		},
		{
			Email: "dept_manager_b@factory.com", Username: "dept_manager_b", FullName: "Sarah Johnson",
			PasswordHash: string(hash), EmployeeID: strPtr("DEPT002"),
			Role: authz.RoleDepartmentManager, DivisionID: &divisionByName["Production"].ID,
			DepartmentID: &departmentByCode["PROD_B"].ID, IsActive: true,
		},
		{
			Email: "qc_manager@factory.com", Username: "qc_manager", FullName: "Jane Doe",
			PasswordHash: string(hash), EmployeeID: strPtr("DEPT003"),
			Role: authz.RoleDepartmentManager, DivisionID: &divisionByName["Quality Assurance"].ID,
			DepartmentID: &departmentByCode["QC_IN"].ID, IsActive: true,
		},
		{
			Email: "employee1@factory.com", Username: "employee1", FullName: "Robert Chen",
			PasswordHash: string(hash), EmployeeID: strPtr("EMP001"),
			Role: authz.RoleEmployee, DivisionID: &divisionByName["Production"].ID,
			DepartmentID: &departmentByCode["PROD_A"].ID, IsActive: true,
		},
		{
			Email: "employee2@factory.com", Username: "employee2", FullName: "Mike Wilson",
			PasswordHash: string(hash), EmployeeID: strPtr("EMP002"),
			Role: authz.RoleEmployee, DivisionID: &divisionByName["Production"].ID,
			DepartmentID: &departmentByCode["PROD_A"].ID, IsActive: true,
		},
		{
			Email: "employee3@factory.com", Username: "employee3", FullName: "Lisa Brown",
			PasswordHash: string(hash), EmployeeID: strPtr("EMP003"),
			Role: authz.RoleEmployee, DivisionID: &divisionByName["Quality Assurance"].ID,
			DepartmentID: &departmentByCode["QC_IN"].ID, IsActive: true,
		},
	}
	userByUsername := make(map[string]*user.User)
	for i := range users {
		if err := firstOrCreate(db, &users[i], "username = ?", users[i].Username); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", users[i].Username, err)
		}
		userByUsername[users[i].Username] = &users[i]
	}
	fmt.Println("Seeded users")

	// Backfill the manager back-references now that the users exist.
	managerAssignments := map[string]string{
		"PROD_A": "dept_manager_a",
		"PROD_B": "dept_manager_b",
		"QC_IN":  "qc_manager",
	}
	for code, username := range managerAssignments {
		if err := db.Model(&department.Department{}).
			Where("code = ?", code).
			Update("manager_id", userByUsername[username].ID).Error; err != nil {
			return fmt.Errorf("failed to assign manager for %s: %w", code, err)
		}
	}
	fmt.Println("Assigned department managers")

	fmt.Println("Database seeded successfully")
	return nil
}

func firstOrCreate(db *gorm.DB, record interface{}, query string, args ...interface{}) error {
	err := db.Where(query, args...).First(record).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return db.Create(record).Error
}
