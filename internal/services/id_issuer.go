package services

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/alimgiray/projectdesk/internal/models"
	"github.com/alimgiray/projectdesk/internal/repositories"
)

// IDIssuer proposes the next sequential project identifier
type IDIssuer struct {
	usedIDRepo  *repositories.UsedIDRepository
	projectRepo *repositories.ProjectRepository
	prefix      string
}

func NewIDIssuer(usedIDRepo *repositories.UsedIDRepository, projectRepo *repositories.ProjectRepository, prefix string) *IDIssuer {
	return &IDIssuer{
		usedIDRepo:  usedIDRepo,
		projectRepo: projectRepo,
		prefix:      prefix,
	}
}

// Propose returns the candidate identifier for a new project. The operator may
// override it before submitting.
func (i *IDIssuer) Propose(ctx context.Context) (string, error) {
	ledger, err := i.usedIDRepo.GetAll(ctx)
	if err != nil {
		return "", fmt.Errorf("error loading ID ledger: %w", err)
	}

	var projects []*models.Project
	if len(ledger) == 0 {
		projects, err = i.projectRepo.GetAll(ctx)
		if err != nil {
			return "", fmt.Errorf("error loading projects: %w", err)
		}
	}

	return NextProjectID(i.prefix, ledger, projects), nil
}

// NextProjectID returns PREFIX_NNN where NNN is one more than the largest
// numeric suffix in the ledger, zero-padded to at least three digits. Live
// projects are only consulted when the ledger is empty.
func NextProjectID(prefix string, ledger []*models.UsedID, projects []*models.Project) string {
	max := new(big.Int)
	if len(ledger) > 0 {
		for _, entry := range ledger {
			if n := NumericSuffix(entry.ID); n.Cmp(max) > 0 {
				max = n
			}
		}
	} else {
		for _, p := range projects {
			if n := NumericSuffix(p.ID); n.Cmp(max) > 0 {
				max = n
			}
		}
	}
	next := new(big.Int).Add(max, big.NewInt(1))
	return fmt.Sprintf("%s_%03d", prefix, next)
}

// NumericSuffix keeps only the digits of id and parses them. Identifiers with
// no digits count as zero. Long digit runs keep their full value.
func NumericSuffix(id string) *big.Int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, id)
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}
