package update

const selectUpdateSQL = `
SELECT
    update_id,
    application_id,
    version,
    version_key,
    description,
    active,
    mandatory,
    release_date,
    package_type,
    file_name,
    file_size,
    file_hash,
    api_file_name,
    api_file_size,
    api_file_hash,
    frontend_file_name,
    frontend_file_size,
    frontend_file_hash
FROM update_package
`

const getUpdateSQL = selectUpdateSQL + `
WHERE update_id = ?
`

// keyword filter is optional: an empty pattern disables it
const queryUpdatesSQL = selectUpdateSQL + `
WHERE (? = 0 OR application_id = ?)
  AND (? = '' OR version LIKE ? OR description LIKE ?)
`

const getActiveForApplicationSQL = selectUpdateSQL + `
WHERE application_id = ? AND active = 1
`

const getClientIDsSQL = `
SELECT update_id, client_id
FROM update_client
WHERE update_id IN (?)
ORDER BY update_id, client_id
`

const createUpdateSQL = `
INSERT INTO update_package (
    application_id,
    version,
    version_key,
    description,
    active,
    mandatory,
    release_date,
    package_type,
    file_name,
    file_size,
    file_hash,
    api_file_name,
    api_file_size,
    api_file_hash,
    frontend_file_name,
    frontend_file_size,
    frontend_file_hash
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateUpdateSQL = `
UPDATE update_package
SET
    application_id = ?,
    version = ?,
    version_key = ?,
    description = ?,
    active = ?,
    mandatory = ?,
    release_date = ?,
    package_type = ?,
    file_name = ?,
    file_size = ?,
    file_hash = ?,
    api_file_name = ?,
    api_file_size = ?,
    api_file_hash = ?,
    frontend_file_name = ?,
    frontend_file_size = ?,
    frontend_file_hash = ?
WHERE update_id = ?
`

const deleteUpdateSQL = `
DELETE FROM update_package
WHERE update_id = ?
`

const clearClientsSQL = `
DELETE FROM update_client
WHERE update_id = ?
`

const addClientSQL = `
INSERT INTO update_client (update_id, client_id) VALUES (?, ?)
`
