package main

import (
	"github.com/spf13/cobra"

	"example.com/learning-path/backend/internal/models"
)

type profileFlags struct {
	userID    int
	domain    string
	level     string
	interests []string
	hours     int
	weeks     int
}

func (p *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.userID, "user-id", 0, "User id recorded in the profile")
	cmd.Flags().StringVar(&p.domain, "domain", "", "Target domain, e.g. \"Data Science\"")
	cmd.Flags().StringVar(&p.level, "level", models.DefaultLevel, "Current level: Beginner, Intermediate or Advanced")
	cmd.Flags().StringSliceVar(&p.interests, "interests", nil, "Comma-separated interests")
	cmd.Flags().IntVar(&p.hours, "hours", models.DefaultHoursPerWeek, "Available hours per week")
	cmd.Flags().IntVar(&p.weeks, "weeks", models.DefaultDeadlineWeeks, "Deadline in weeks")
	_ = cmd.MarkFlagRequired("domain")
}

func (p *profileFlags) profile() models.UserProfile {
	interests := p.interests
	if interests == nil {
		interests = []string{}
	}

	return models.UserProfile{
		UserID:        p.userID,
		TargetDomain:  p.domain,
		CurrentLevel:  p.level,
		Interests:     interests,
		HoursPerWeek:  p.hours,
		DeadlineWeeks: p.weeks,
	}
}
