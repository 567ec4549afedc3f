// Command seed prepares a fresh deployment: it creates the blood bank with
// every blood type at zero units and, on request, the first admin account.
// Both steps are safe to repeat.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"bloodbank-backend/internal/auth"
	"bloodbank-backend/internal/config"
	"bloodbank-backend/internal/database"
	"bloodbank-backend/internal/inventory"
	"bloodbank-backend/internal/models"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "seed",
		Short: "Initialize the blood bank inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			database.Init(config.Load())
			return seedInventory()
		},
	}
	root.AddCommand(adminCmd())
	return root
}

func adminCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Create the first admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Admin password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			database.Init(config.Load())
			user, err := auth.RegisterAdmin(database.DB, auth.Credentials{
				Name:     name,
				Email:    email,
				Password: password,
			})
			if errors.Is(err, models.ErrForbidden) {
				log.Println("An admin already exists, nothing to do")
				return nil
			}
			if err != nil {
				return err
			}
			log.Printf("Admin %s created (id %d)", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "admin display name")
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func seedInventory() error {
	bank, created, err := inventory.Seed(database.DB)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	if created {
		log.Printf("Blood bank %d initialized with %d blood types", bank.ID, len(bank.Items))
	} else {
		log.Printf("Blood bank %d already exists, nothing to do", bank.ID)
	}
	for _, it := range bank.Items {
		log.Printf("  %-3s %d", it.BloodType, it.Quantity)
	}
	return nil
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(b)), nil
}
