package license

const selectLicenseSQL = `
SELECT
    license_id,
    client_id,
    application_id,
    api_key,
    display_name,
    installed_version,
    active,
    blocked,
    block_reason,
    block_date,
    use_own_updater,
    frontend_path,
    api_path,
    api_pool_name,
    frontend_pool_name,
    management_url,
    database_name
FROM license
`

const getAllLicensesSQL = selectLicenseSQL + `
ORDER BY client_id, application_id, license_id
`

const getLicensesForClientSQL = selectLicenseSQL + `
WHERE client_id = ?
ORDER BY application_id, license_id
`

const getLicenseSQL = selectLicenseSQL + `
WHERE license_id = ?
`

const getLicenseByAPIKeySQL = selectLicenseSQL + `
WHERE api_key = ?
`

const getEntitledLicenseSQL = selectLicenseSQL + `
WHERE client_id = ? AND application_id = ? AND active = 1 AND blocked = 0
ORDER BY license_id
LIMIT 1
`

const selectDetailSQL = `
SELECT
    l.license_id,
    l.client_id,
    l.application_id,
    l.api_key,
    l.display_name,
    l.installed_version,
    l.active,
    l.blocked,
    l.block_reason,
    l.block_date,
    l.use_own_updater,
    l.frontend_path,
    l.api_path,
    l.api_pool_name,
    l.frontend_pool_name,
    l.management_url,
    l.database_name,
    c.client_name,
    a.application_name,
    a.kind AS application_kind,
    a.slug AS application_slug,
    ar.internal AS area_internal
FROM license l
JOIN client c ON c.client_id = l.client_id
JOIN application a ON a.application_id = l.application_id
JOIN area ar ON ar.area_id = a.area_id
`

const getDetailSQL = selectDetailSQL + `
WHERE l.license_id = ?
`

const getClientUpdaterSQL = selectDetailSQL + `
WHERE l.client_id = ? AND a.kind = 'updater' AND l.active = 1
ORDER BY l.license_id
LIMIT 1
`

// company updater serves every active regular license that did not opt into its own updater
const getCompanyRosterSQL = selectDetailSQL + `
WHERE l.active = 1
  AND a.kind <> 'updater'
  AND (l.use_own_updater IS NULL OR l.use_own_updater = 0)
ORDER BY c.client_name, a.application_name, l.license_id
`

const getClientRosterSQL = selectDetailSQL + `
WHERE l.client_id = ?
  AND l.active = 1
  AND l.use_own_updater = 1
  AND a.kind <> 'updater'
  AND ar.internal = 0
ORDER BY a.application_name, l.license_id
`

const createLicenseSQL = `
INSERT INTO license (
    client_id,
    application_id,
    api_key,
    display_name,
    installed_version,
    active,
    use_own_updater,
    frontend_path,
    api_path,
    api_pool_name,
    frontend_pool_name,
    management_url,
    database_name
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateLicenseSQL = `
UPDATE license
SET
    display_name = ?,
    active = ?,
    use_own_updater = ?,
    frontend_path = ?,
    api_path = ?,
    api_pool_name = ?,
    frontend_pool_name = ?,
    management_url = ?,
    database_name = ?
WHERE license_id = ?
`

const setBlockedSQL = `
UPDATE license
SET blocked = ?, active = ?, block_reason = ?, block_date = ?
WHERE license_id = ?
`

const setInstalledVersionSQL = `
UPDATE license
SET installed_version = ?
WHERE license_id = ?
`

const deleteLicenseSQL = `
DELETE FROM license
WHERE license_id = ?
`

const countModulesSQL = `
SELECT COUNT(*) FROM license_module WHERE license_id = ?
`
