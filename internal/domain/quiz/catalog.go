package quiz

import "github.com/oshokin/leet-alarm/internal/domain/alarm"

// Builtin returns the fixed question catalog shipped with the application.
// Each call returns a fresh slice.
func Builtin() []Question {
	return []Question{
		{
			ID:     "two-sum",
			Title:  "Two Sum",
			Prompt: "Given an array of integers, return indices of the two numbers such that they add up to a specific target.",
			Options: []string{
				"Use a hash map to store complements",
				"Sort the array then use binary search",
				"Try every pair with two loops",
				"Use dynamic programming",
			},
			CorrectAnswer: 0,
			Explanation:   "A hash map lets you find complements in O(n) time.",
			Difficulty:    alarm.DifficultyEasy,
		},
		{
			ID:     "reverse-linked-list",
			Title:  "Reverse Linked List",
			Prompt: "Reverse a singly linked list.",
			Options: []string{
				"Use recursion only",
				"Iterate and adjust next pointers",
				"Use a stack of nodes",
				"Copy values into an array",
			},
			CorrectAnswer: 1,
			Explanation:   "Iteratively moving through the list and rewiring next pointers yields O(1) space.",
			Difficulty:    alarm.DifficultyEasy,
		},
		{
			ID:     "binary-tree-level-order-traversal",
			Title:  "Binary Tree Level Order Traversal",
			Prompt: "Return the level order traversal of a binary tree's nodes' values.",
			Options: []string{
				"Depth-first search with recursion",
				"In-order traversal",
				"Breadth-first search with a queue",
				"Reverse post-order traversal",
			},
			CorrectAnswer: 2,
			Explanation:   "BFS with a queue visits nodes level by level.",
			Difficulty:    alarm.DifficultyMedium,
		},
		{
			ID:     "top-k-frequent-elements",
			Title:  "Top K Frequent Elements",
			Prompt: "Given a non-empty array, return the k most frequent elements.",
			Options: []string{
				"Sort the array",
				"Use a frequency map and min-heap",
				"Sliding window",
				"Prefix sums",
			},
			CorrectAnswer: 1,
			Explanation:   "A frequency map plus a min-heap (or bucket sort) tracks the top k efficiently.",
			Difficulty:    alarm.DifficultyMedium,
		},
		{
			ID:     "word-ladder",
			Title:  "Word Ladder",
			Prompt: "Find the length of shortest transformation sequence from beginWord to endWord.",
			Options: []string{
				"Depth-first search",
				"Breadth-first search over transformations",
				"Union find",
				"Greedy choice",
			},
			CorrectAnswer: 1,
			Explanation:   "BFS explores transformations layer by layer to find the shortest path.",
			Difficulty:    alarm.DifficultyHard,
		},
		{
			ID:     "median-of-two-sorted-arrays",
			Title:  "Median of Two Sorted Arrays",
			Prompt: "Find the median of two sorted arrays in O(log (m+n)).",
			Options: []string{
				"Merge the arrays fully",
				"Binary search partitioning",
				"Randomized quickselect",
				"Two-pointer linear scan",
			},
			CorrectAnswer: 1,
			Explanation:   "Binary searching partition indices yields the median without full merge.",
			Difficulty:    alarm.DifficultyHard,
		},
	}
}
