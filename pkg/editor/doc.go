//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package editor implements the page cache that pagedit edits files through.
// A Session keeps a window of three pages over the file: the page before
// the screen, the page on the screen and an overflow page that collects
// bytes pushed off the end of the screen by inserts. Everything else stays
// on the card and is reached only by seeks, reads and writes through a
// storage.Port.
// Saving writes the window back in place and, when the window has grown,
// cascades the rest of the file forward one page at a time.
package editor
