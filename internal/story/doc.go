// Package story turns a set of vocabulary words into an illustrated,
// translated story.
//
// A Pipeline runs four stages, each of which finishes for all of its items
// before the next one starts:
//
//  1. GenerateStory asks a language model for story segments, one chunk of
//     words at a time, retrying until every word of the chunk is used.
//  2. AnnotateStory splits the story into sentences, translates each one and
//     renders an HTML fragment with the vocabulary words in bold.
//  3. IllustrateStory draws one image per sentence that uses a vocabulary word.
//  4. VerifyImages asks a vision model to describe every image and rejects
//     images whose description does not match their sentence.
//
// Only a failure of the first stage aborts a run. Every later failure is
// attached to the item it belongs to as a *Failure.
package story
