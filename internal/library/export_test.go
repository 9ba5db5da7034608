// Copyright (c) 2026 Library. All rights reserved.

package library

// DropAuthorLink deletes an article's author link behind the engine's back.
func (repository *MemoryRepository) DropAuthorLink(articleID int64) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	delete(repository.state.authorLinks, articleID)
}

// DropPerson deletes a person while links may still point at it.
func (repository *MemoryRepository) DropPerson(personID int64) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	delete(repository.state.identifiers[KindPerson], personID)
}

// AuthorLinkCount counts author links of one article.
func (repository *MemoryRepository) AuthorLinkCount(articleID int64) int {
	repository.mu.RLock()
	defer repository.mu.RUnlock()
	count := 0
	for _, link := range repository.state.authorLinks {
		if link.ArticleID == articleID {
			count++
		}
	}
	return count
}

// LinkStateName exposes the edit matrix classification.
func LinkStateName(linkExists, targetExists bool) string {
	return classify(linkExists, targetExists).String()
}

// DetailFromRows exposes row shaping.
var DetailFromRows = detailFromRows

// SplitKeywords exposes keyword parsing.
var SplitKeywords = splitKeywords
