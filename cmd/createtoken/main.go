// Command createtoken signs a bearer token for local testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"axiapac.com/personnel/config"
	"axiapac.com/personnel/security"
)

func main() {
	subject := flag.String("subject", "dev-user", "token subject")
	name := flag.String("name", "", "display name")
	role := flag.String("role", string(security.RoleAdmin), "admin|manager|staff")
	perms := flag.String("permissions", "", "comma separated extra permissions")
	personnelID := flag.Uint("personnel-id", 0, "linked personnel id")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
	secret, err := cfg.Secret()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}

	identity := security.Identity{Name: *name, Role: *role}
	if *perms != "" {
		for _, p := range strings.Split(*perms, ",") {
			identity.Permissions = append(identity.Permissions, strings.TrimSpace(p))
		}
		if _, unknown := security.ParsePermissions(identity.Permissions); len(unknown) > 0 {
			fmt.Fprintf(os.Stderr, "[WARN] unknown permissions: %s\n", strings.Join(unknown, ", "))
		}
	}
	if *personnelID > 0 {
		id := *personnelID
		identity.PersonnelID = &id
	}

	token, err := security.CreateIdentityToken(*subject, identity, secret, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
