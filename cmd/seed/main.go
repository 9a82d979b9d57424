package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/clearcrm/authz/internal/config"
	"github.com/clearcrm/authz/internal/infra/postgres"
	"github.com/clearcrm/authz/pkg/domain/permission"
	"github.com/clearcrm/authz/pkg/domain/shared"
	"github.com/clearcrm/authz/pkg/domain/tenant"
)

// grantsFile is the YAML layout of a role grants file:
//
//	tenant: 11111111-1111-1111-1111-111111111111
//	roles:
//	  member:
//	    - crm.deals.view.own
//	    - crm.deals.assignment.own
//	  manager:
//	    - crm.deals.view.department
type grantsFile struct {
	Tenant string              `yaml:"tenant"`
	Roles  map[string][]string `yaml:"roles"`
}

func main() {
	grantsPath := flag.String("grants", "", "Path to a YAML role grants file (optional)")
	catalogOnly := flag.Bool("catalog-only", false, "Seed the permission catalog and exit")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		fmt.Printf("Error pinging database: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Connected to database")

	grants := postgres.NewGrantRepository(db)

	// The catalog is always seeded so that grant rows reference known names.
	catalog := permission.AllPermissions()
	if err := grants.SeedCatalog(ctx, catalog); err != nil {
		fmt.Printf("Error seeding permission catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded permission catalog (%d permissions)\n", len(catalog))

	if *catalogOnly {
		fmt.Println("\nSeed completed successfully!")
		return
	}

	if *grantsPath == "" {
		fmt.Println("No grants file given, catalog only")
		fmt.Println("\nSeed completed successfully!")
		return
	}

	file, err := loadGrantsFile(*grantsPath)
	if err != nil {
		fmt.Printf("Error reading grants file %s: %v\n", *grantsPath, err)
		os.Exit(1)
	}

	tenantID, err := shared.IDFromString(file.Tenant)
	if err != nil {
		fmt.Printf("Error: invalid tenant id %q in grants file\n", file.Tenant)
		os.Exit(1)
	}

	for roleName, names := range file.Roles {
		role, ok := tenant.ParseRole(roleName)
		if !ok {
			fmt.Printf("Error: unknown role %q in grants file\n", roleName)
			os.Exit(1)
		}

		perms := make([]permission.Permission, 0, len(names))
		for _, name := range names {
			p, ok := permission.Parse(name)
			if !ok {
				fmt.Printf("Error: unknown permission %q for role %q\n", name, roleName)
				os.Exit(1)
			}
			perms = append(perms, p)
		}

		if err := grants.ReplaceRoleGrants(ctx, tenantID, role, perms); err != nil {
			fmt.Printf("Error seeding grants for role %q: %v\n", roleName, err)
			os.Exit(1)
		}
		fmt.Printf("Seeded %d grants for role %q in tenant %s\n", len(perms), roleName, tenantID)
	}

	fmt.Println("\nSeed completed successfully!")
}

func loadGrantsFile(path string) (*grantsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file grantsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if file.Tenant == "" {
		return nil, fmt.Errorf("missing tenant id")
	}
	if len(file.Roles) == 0 {
		return nil, fmt.Errorf("no roles defined")
	}
	return &file, nil
}
