package cli

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"marklist/backend/internal/gateway"
	"marklist/backend/internal/shared"
	"marklist/backend/internal/student"
)

// StudentSeed is one sample record. Marks are applied to the configured
// subjects in order, wrapping when there are more subjects than marks.
type StudentSeed struct {
	Name           string
	RegisterNumber string
	Marks          []int
}

// SampleStudents covers every grade band
var SampleStudents = []StudentSeed{
	{"Asha Raman", "21CS001", []int{95, 92, 98, 90, 94}},
	{"Bala Murugan", "21CS002", []int{85, 80, 88, 79, 83}},
	{"Chitra Devi", "21CS003", []int{72, 75, 70, 68, 74}},
	{"Dinesh Kumar", "21CS004", []int{65, 60, 62, 58, 66}},
	{"Esther Paul", "21CS005", []int{55, 52, 50, 48, 57}},
	{"Farhan Ali", "21CS006", []int{45, 40, 42, 38, 44}},
	{"Gowri Shankar", "21CS007", []int{30, 35, 28, 40, 25}},
}

// SeedResult counts what a seed run did
type SeedResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample students, skipping register numbers already taken",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			services, err := gateway.NewServices(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer services.Close()

			result, err := seedStudents(cmd, services.Students, SampleStudents)
			if err != nil {
				return err
			}

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d students (%d already present)\n", result.Inserted, result.Skipped)
			return nil
		},
	}

	return cmd
}

func seedStudents(cmd *cobra.Command, svc *student.Service, seeds []StudentSeed) (SeedResult, error) {
	var result SeedResult
	subjects := svc.Subjects()

	for _, seed := range seeds {
		marks := make(map[string]int, len(subjects))
		for i, subject := range subjects {
			marks[subject] = seed.Marks[i%len(seed.Marks)]
		}

		_, err := svc.Add(cmd.Context(), student.Submission{
			StudentName:    seed.Name,
			RegisterNumber: seed.RegisterNumber,
			Marks:          marks,
		})
		switch {
		case err == nil:
			result.Inserted++
		case errors.Is(err, shared.ErrDuplicateKey):
			log.Printf("INFO: Student %s already exists, skipping", seed.RegisterNumber)
			result.Skipped++
		default:
			return result, fmt.Errorf("seeding %s: %w", seed.RegisterNumber, err)
		}
	}

	return result, nil
}
