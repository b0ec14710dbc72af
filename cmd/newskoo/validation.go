package main

import (
	"errors"
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return errors.New("username and password cannot be empty")
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

func validatePostInput(title, content string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("title cannot be empty")
	}
	if len(title) > 200 {
		return errors.New("title exceeds 200 characters")
	}
	if strings.TrimSpace(content) == "" {
		return errors.New("content cannot be empty")
	}
	return nil
}

func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("category name cannot be empty")
	}
	if len(name) > 80 {
		return errors.New("category name exceeds 80 characters")
	}
	return nil
}

func validateSlug(slug string) error {
	if slug == "" {
		return nil // backend derives one from the title
	}
	if !slugPattern.MatchString(slug) {
		return errors.New("slug may only contain lowercase letters, digits and hyphens")
	}
	return nil
}
