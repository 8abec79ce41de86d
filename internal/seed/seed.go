// Package seed fills a database with realistic demo data.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"

	"gorm.io/gorm"
)

// DefaultPassword is set on every seeded account.
const DefaultPassword = "testpass123"

var (
	levels      = []string{"Junior", "Mid-level", "Senior", "Lead", "Principal"}
	specialties = []string{"Backend", "Frontend", "Full Stack", "DevOps", "Data"}
	techSkills  = []string{"Go", "PostgreSQL", "JavaScript", "React", "AWS", "Docker", "Kubernetes", "Machine Learning", "DevOps"}
	industries  = []string{"Technology", "Finance", "Healthcare", "Manufacturing", "Retail", "Education"}
	firstNames  = []string{"Alice", "Bob", "Carol", "David", "Erin", "Frank", "Grace", "Heidi", "Ivan", "Judy", "Mallory", "Niaj", "Olivia", "Peggy", "Rupert", "Sybil", "Trent", "Victor", "Wendy"}
	lastNames   = []string{"Smith", "Johnson", "Brown", "Garcia", "Miller", "Davis", "Lopez", "Wilson", "Anderson", "Thomas", "Moore", "Martin", "Lee", "Clark"}
	cities      = []string{"Berlin", "London", "Amsterdam", "Lisbon", "Warsaw", "Toronto", "Austin", "Singapore", "Almaty", "Dublin"}
	nameParts   = []string{"Acme", "Globex", "Initech", "Umbrella", "Stark", "Wayne", "Hooli", "Vandelay", "Soylent", "Cyberdyne", "Tyrell", "Wonka"}
	nameSuffix  = []string{"Labs", "Systems", "Group", "Holdings", "Industries", "Technologies", "Partners"}

	typeMultiplier = map[models.JobType]float64{
		models.JobTypeFullTime:   1.0,
		models.JobTypePartTime:   0.6,
		models.JobTypeInternship: 0.4,
		models.JobTypeContract:   1.2,
		models.JobTypeRemote:     1.1,
	}

	statusWeights = []struct {
		status models.ApplicationStatus
		weight int
	}{
		{models.ApplicationStatusApplied, 40},
		{models.ApplicationStatusUnderReview, 30},
		{models.ApplicationStatusInterview, 15},
		{models.ApplicationStatusOffer, 5},
		{models.ApplicationStatusRejected, 10},
	}
)

type Options struct {
	Companies  int
	Employers  int
	Candidates int
	Jobs       int
	// MinApplications and MaxApplications bound how many active jobs each
	// candidate applies to.
	MinApplications int
	MaxApplications int
}

func DefaultOptions() Options {
	return Options{
		Companies:       20,
		Employers:       50,
		Candidates:      50,
		Jobs:            50,
		MinApplications: 3,
		MaxApplications: 10,
	}
}

type Result struct {
	Companies    int
	Employers    int
	Candidates   int
	Jobs         int
	Applications int
}

type Seeder struct {
	rnd             *rand.Rand
	userRepo        repositories.UserRepository
	companyRepo     repositories.CompanyRepository
	jobRepo         repositories.JobRepository
	applicationRepo repositories.ApplicationRepository
}

// New returns a seeder whose output is fully determined by seed.
func New(seed int64) *Seeder {
	return &Seeder{
		rnd:             rand.New(rand.NewSource(seed)),
		userRepo:        repositories.NewUserRepository(),
		companyRepo:     repositories.NewCompanyRepository(),
		jobRepo:         repositories.NewJobRepository(),
		applicationRepo: repositories.NewApplicationRepository(),
	}
}

// Run inserts everything in one transaction.
func (s *Seeder) Run(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	if opts.Companies < 1 && (opts.Employers > 0 || opts.Jobs > 0) {
		return nil, fmt.Errorf("employers and jobs need at least one company")
	}
	if opts.MaxApplications < opts.MinApplications {
		opts.MaxApplications = opts.MinApplications
	}

	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		return nil, err
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	res := &Result{}

	companies := make([]*models.Company, 0, opts.Companies)
	for i := 0; i < opts.Companies; i++ {
		company := s.company(i)
		if err := s.companyRepo.Create(tx, company); err != nil {
			return nil, fmt.Errorf("company %q: %w", company.Name, err)
		}
		companies = append(companies, company)
	}
	res.Companies = len(companies)

	employers := make([]*models.User, 0, opts.Employers)
	for i := 0; i < opts.Employers; i++ {
		user := s.user(i, models.UserTypeEmployer, hash)
		user.CompanyID = &companies[i%len(companies)].ID
		if err := s.userRepo.Create(tx, user); err != nil {
			return nil, fmt.Errorf("employer %q: %w", user.Email, err)
		}
		employers = append(employers, user)
	}
	res.Employers = len(employers)

	candidates := make([]*models.User, 0, opts.Candidates)
	for i := 0; i < opts.Candidates; i++ {
		user := s.user(i, models.UserTypeCandidate, hash)
		user.Phone = fmt.Sprintf("+1555%07d", s.rnd.Intn(10_000_000))
		if err := s.userRepo.Create(tx, user); err != nil {
			return nil, fmt.Errorf("candidate %q: %w", user.Email, err)
		}
		candidates = append(candidates, user)
	}
	res.Candidates = len(candidates)

	var activeJobs []*models.Job
	if len(employers) > 0 {
		for i := 0; i < opts.Jobs; i++ {
			poster := employers[s.rnd.Intn(len(employers))]
			job := s.job(poster, companies[indexOf(companies, *poster.CompanyID)])
			if err := s.jobRepo.Create(tx, job); err != nil {
				return nil, fmt.Errorf("job %q: %w", job.Title, err)
			}
			res.Jobs++
			if job.IsActive {
				activeJobs = append(activeJobs, job)
			}
		}
	}

	for _, candidate := range candidates {
		n := opts.MinApplications + s.rnd.Intn(opts.MaxApplications-opts.MinApplications+1)
		if n > len(activeJobs) {
			n = len(activeJobs)
		}
		for _, idx := range s.rnd.Perm(len(activeJobs))[:n] {
			job := activeJobs[idx]
			app := &models.Application{
				JobID:       job.ID,
				CandidateID: candidate.ID,
				CoverLetter: s.coverLetter(job, candidate),
				Status:      s.status(),
			}
			if err := s.applicationRepo.Create(tx, app); err != nil {
				return nil, fmt.Errorf("application to %q: %w", job.Title, err)
			}
			res.Applications++
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Database seeded",
		"companies", res.Companies,
		"employers", res.Employers,
		"candidates", res.Candidates,
		"jobs", res.Jobs,
		"applications", res.Applications,
	)
	return res, nil
}

func indexOf(companies []*models.Company, id string) int {
	for i, c := range companies {
		if c.ID == id {
			return i
		}
	}
	return 0
}

func (s *Seeder) pick(list []string) string {
	return list[s.rnd.Intn(len(list))]
}

func (s *Seeder) company(i int) *models.Company {
	name := fmt.Sprintf("%s %s %d", s.pick(nameParts), s.pick(nameSuffix), i+1)
	industry := s.pick(industries)
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))

	return &models.Company{
		Name: name,
		Description: fmt.Sprintf("Specializing in %s solutions with offices in %s.",
			strings.ToLower(industry), s.pick(cities)),
		Website: "https://" + slug + ".example.com",
	}
}

func (s *Seeder) user(i int, userType models.UserType, hash string) *models.User {
	first, last := s.pick(firstNames), s.pick(lastNames)
	return &models.User{
		Email:        fmt.Sprintf("%s.%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), userType, i),
		PasswordHash: hash,
		UserType:     userType,
		FirstName:    first,
		LastName:     last,
		IsActive:     true,
	}
}

// JobTitle combines a seniority level and a specialty.
func JobTitle(rnd *rand.Rand) string {
	return fmt.Sprintf("%s %s Developer", levels[rnd.Intn(len(levels))], specialties[rnd.Intn(len(specialties))])
}

// BaseSalary scales 50000 by seniority and job type.
func BaseSalary(jobType models.JobType, title string) float64 {
	level := 1.0
	switch {
	case strings.Contains(title, "Junior"):
		level = 0.7
	case strings.Contains(title, "Senior"), strings.Contains(title, "Lead"), strings.Contains(title, "Principal"):
		level = 1.5
	}

	multiplier, ok := typeMultiplier[jobType]
	if !ok {
		multiplier = 1.0
	}
	return 50000 * level * multiplier
}

// Salary is the base salary with up to 10% jitter either way.
func Salary(rnd *rand.Rand, base float64) float64 {
	low, high := int(base*0.9), int(base*1.1)
	return float64(low + rnd.Intn(high-low+1))
}

func (s *Seeder) job(poster *models.User, company *models.Company) *models.Job {
	jobType := models.JobTypes[s.rnd.Intn(len(models.JobTypes))]
	title := JobTitle(s.rnd)

	location := "Remote"
	if jobType != models.JobTypeRemote {
		location = strings.Fields(company.Name)[0] + " " + s.pick(cities)
	}

	var requirements []string
	for i := 0; i < 3+s.rnd.Intn(4); i++ {
		requirements = append(requirements, "- "+s.pick(techSkills)+" experience")
	}

	return &models.Job{
		Title:   title,
		JobType: jobType,
		Description: fmt.Sprintf("## About the Role\nJoin the %s team at %s.\n\n## Requirements\n%s\n",
			strings.ToLower(strings.Fields(title)[1]), company.Name, strings.Join(requirements, "\n")),
		Location:   location,
		Salary:     Salary(s.rnd, BaseSalary(jobType, title)),
		CompanyID:  company.ID,
		PostedByID: poster.ID,
		IsActive:   s.rnd.Intn(100) < 80,
	}
}

func (s *Seeder) status() models.ApplicationStatus {
	roll := s.rnd.Intn(100)
	for _, sw := range statusWeights {
		if roll < sw.weight {
			return sw.status
		}
		roll -= sw.weight
	}
	return models.ApplicationStatusApplied
}

func (s *Seeder) coverLetter(job *models.Job, candidate *models.User) string {
	return fmt.Sprintf("Dear Hiring Manager,\n\nI'm excited to apply for the %s position.\n"+
		"My skills in %s align well with your requirements.\n\nSincerely,\n%s\n",
		job.Title, s.pick(techSkills), candidate.FullName())
}
